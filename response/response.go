// Package response builds the transport responses returned by handlers.
//
// Success and Failed produce a Response with a pre-serialized JSON body.
// The dispatch wrapper maps any Response into the API Gateway envelope.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/sjson"
)

const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

type Response struct {
	StatusCode      int               `json:"statusCode"`
	Body            string            `json:"body"`
	Headers         map[string]string `json:"headers,omitempty"`
	Cookies         []string          `json:"cookies,omitempty"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`

	data    any
	hasData bool
}

type Option func(*Response)

func WithStatus(code int) Option {
	return func(r *Response) {
		r.StatusCode = code
	}
}

func WithHeader(key, value string) Option {
	return func(r *Response) {
		if r.Headers == nil {
			r.Headers = map[string]string{}
		}
		r.Headers[key] = value
	}
}

func WithCookie(cookie string) Option {
	return func(r *Response) {
		r.Cookies = append(r.Cookies, cookie)
	}
}

// WithBase64 marks Body as base64 encoded binary content.
func WithBase64() Option {
	return func(r *Response) {
		r.IsBase64Encoded = true
	}
}

// Success wraps data as {"data": ...} with status 200.
func Success(data any, opts ...Option) *Response {
	body, err := sjson.Set(`{}`, "data", data)
	if err != nil {
		return Failed(Internal(fmt.Sprintf("encode response: %v", err)))
	}

	r := &Response{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{HeaderContentType: ContentTypeJSON},
		data:       data,
		hasData:    true,
	}
	r.apply(opts...)
	return r
}

// Failed builds a failure response from cause. The status is 500 unless
// cause is an *Error or WithStatus overrides it. The body is
// {"message": ..., "code": ..., "cause": ...}.
func Failed(cause any, opts ...Option) *Response {
	r := &Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{HeaderContentType: ContentTypeJSON},
	}

	var (
		message string
		code    string
		detail  any
	)
	var herr *Error
	switch c := cause.(type) {
	case nil:
	case error:
		if errors.As(c, &herr) {
			r.StatusCode = herr.Status
			message, code, detail = herr.Error(), herr.Code, herr.Cause
			if err, ok := detail.(error); ok && !isJSONObject(err) {
				detail = nil
			}
		} else {
			message = c.Error()
		}
	case string:
		message = c
	case fmt.Stringer:
		message = c.String()
	default:
		detail = c
	}

	r.apply(opts...)

	if message == "" {
		message = http.StatusText(r.StatusCode)
	}
	if code == "" {
		code = CodeFromStatus(r.StatusCode)
	}

	body, _ := sjson.Set(`{}`, "message", message)
	body, _ = sjson.Set(body, "code", code)
	if detail != nil {
		if withCause, err := sjson.Set(body, "cause", detail); err == nil {
			body = withCause
		}
	}
	r.Body = body
	return r
}

// Data returns the value passed to Success.
func (r *Response) Data() (any, bool) {
	return r.data, r.hasData
}

// Envelope converts r into the API Gateway HTTP API response shape.
func (r *Response) Envelope() events.APIGatewayV2HTTPResponse {
	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	env := events.APIGatewayV2HTTPResponse{
		StatusCode:      status,
		Body:            r.Body,
		IsBase64Encoded: r.IsBase64Encoded,
		Cookies:         r.Cookies,
	}
	if len(r.Headers) > 0 {
		env.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			env.Headers[k] = v
		}
	}
	return env
}

func (r *Response) apply(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
}

// isJSONObject reports whether v has a structured JSON form worth exposing.
func isJSONObject(v any) bool {
	b, err := json.Marshal(v)
	return err == nil && len(b) > 2 && b[0] == '{'
}
