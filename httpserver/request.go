package httpserver

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aura-studio/apifunc/handler"
	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NewRequest builds the API Gateway event API Gateway would send for c.
func (e *Engine) NewRequest(c *gin.Context, def *handler.Definition) (events.APIGatewayV2HTTPRequest, error) {
	var body []byte
	if c.Request.Body != nil {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return events.APIGatewayV2HTTPRequest{}, fmt.Errorf("read body: %w", err)
		}
		body = data
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	var cookies []string
	for _, cookie := range c.Request.Cookies() {
		cookies = append(cookies, cookie.String())
	}

	var query map[string]string
	if values := c.Request.URL.Query(); len(values) > 0 {
		query = make(map[string]string, len(values))
		for k, v := range values {
			query[k] = strings.Join(v, ",")
		}
	}

	var params map[string]string
	if len(c.Params) > 0 {
		params = make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = strings.TrimPrefix(p.Value, "/")
		}
	}

	now := time.Now()
	req := events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              def.Route(),
		RawPath:               c.Request.URL.Path,
		RawQueryString:        c.Request.URL.RawQuery,
		Cookies:               cookies,
		Headers:               headers,
		QueryStringParameters: query,
		PathParameters:        params,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RouteKey:   def.Route(),
			Stage:      e.Stage,
			RequestID:  uuid.NewString(),
			DomainName: c.Request.Host,
			Time:       now.Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch:  now.UnixMilli(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    c.Request.Method,
				Path:      c.Request.URL.Path,
				Protocol:  c.Request.Proto,
				SourceIP:  c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
			},
		},
	}

	if utf8.Valid(body) {
		req.Body = string(body)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(body)
		req.IsBase64Encoded = true
	}
	return req, nil
}

// WriteResult writes an API Gateway response as is and anything else as
// JSON with status 200.
func (e *Engine) WriteResult(c *gin.Context, result any) {
	switch r := result.(type) {
	case events.APIGatewayV2HTTPResponse:
		e.writeEnvelope(c, &r)
	case *events.APIGatewayV2HTTPResponse:
		if r == nil {
			c.Status(http.StatusNoContent)
			return
		}
		e.writeEnvelope(c, r)
	default:
		c.JSON(http.StatusOK, result)
	}
}

func (e *Engine) writeEnvelope(c *gin.Context, r *events.APIGatewayV2HTTPResponse) {
	body := []byte(r.Body)
	if r.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(r.Body)
		if err != nil {
			c.String(http.StatusInternalServerError, fmt.Sprintf("decode body: %v", err))
			return
		}
		body = decoded
	}

	for k, v := range r.Headers {
		c.Header(k, v)
	}
	for k, v := range r.MultiValueHeaders {
		for _, vv := range v {
			c.Writer.Header().Add(k, vv)
		}
	}
	for _, cookie := range r.Cookies {
		c.Writer.Header().Add("Set-Cookie", cookie)
	}

	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	_, _ = c.Writer.Write(body)
}
