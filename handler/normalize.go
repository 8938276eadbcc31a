package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aura-studio/apifunc/response"
	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"
)

// normalize maps a handler result onto the value returned to the runtime.
// Responses and anything shaped like a pre-serialized envelope (a string
// "body" field) become an API Gateway response. Other values pass through.
func (w *Wrapper[B, Q, A]) normalize(result any) (any, error) {
	switch r := result.(type) {
	case nil:
		return nil, ErrInvalidResponseType
	case *response.Response:
		if r == nil {
			return nil, ErrInvalidResponseType
		}
		return w.withDefaultHeaders(r.Envelope()), nil
	case response.Response:
		return w.withDefaultHeaders(r.Envelope()), nil
	case events.APIGatewayV2HTTPResponse:
		return w.withDefaultHeaders(r), nil
	case *events.APIGatewayV2HTTPResponse:
		if r == nil {
			return nil, ErrInvalidResponseType
		}
		return w.withDefaultHeaders(*r), nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %v", ErrInvalidResponseType, result, err)
	}
	if string(raw) == "null" {
		return nil, ErrInvalidResponseType
	}
	if env, ok := envelopeOf(raw); ok {
		return w.withDefaultHeaders(env), nil
	}
	return result, nil
}

// envelopeOf reads raw as an envelope when it is an object with a string
// body.
func envelopeOf(raw []byte) (events.APIGatewayV2HTTPResponse, bool) {
	var env events.APIGatewayV2HTTPResponse
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() || doc.Get("body").Type != gjson.String {
		return env, false
	}

	env.StatusCode = int(doc.Get("statusCode").Int())
	if env.StatusCode == 0 {
		env.StatusCode = http.StatusOK
	}
	env.Body = doc.Get("body").String()
	env.IsBase64Encoded = doc.Get("isBase64Encoded").Bool()

	if headers := doc.Get("headers"); headers.IsObject() {
		env.Headers = map[string]string{}
		headers.ForEach(func(key, value gjson.Result) bool {
			env.Headers[key.String()] = value.String()
			return true
		})
	}
	if cookies := doc.Get("cookies"); cookies.IsArray() {
		for _, c := range cookies.Array() {
			env.Cookies = append(env.Cookies, c.String())
		}
	}
	return env, true
}

func (w *Wrapper[B, Q, A]) withDefaultHeaders(env events.APIGatewayV2HTTPResponse) events.APIGatewayV2HTTPResponse {
	if len(w.DefaultHeaders) == 0 {
		return env
	}
	headers := make(map[string]string, len(env.Headers)+len(w.DefaultHeaders))
	for k, v := range w.DefaultHeaders {
		headers[k] = v
	}
	for k, v := range env.Headers {
		headers[k] = v
	}
	env.Headers = headers
	return env
}

func roundTrip(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
