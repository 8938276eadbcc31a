package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aura-studio/apifunc/query"
	"github.com/aura-studio/apifunc/response"
	"github.com/aura-studio/apifunc/schema"
	"github.com/aws/aws-lambda-go/events"
)

// ValidateInput checks payload against v. A string payload is decoded as
// JSON first. Without a validator the payload is returned untouched.
//
// Errors are a *MalformedInputError when the JSON cannot be decoded, a
// *schema.ValidationError when the value is rejected, or an error wrapping
// schema.ErrNoErrorDetail when the engine fails without saying why.
func ValidateInput(v *schema.Validator, payload any) (any, error) {
	if v == nil {
		return payload, nil
	}
	if s, ok := payload.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, &MalformedInputError{Source: "body", Err: err}
		}
		payload = decoded
	}
	return v.Validate(payload)
}

// rawBody returns the request body, or nil when there is none.
func rawBody(req *events.APIGatewayV2HTTPRequest) (any, error) {
	if req.Body == "" {
		return nil, nil
	}
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, &MalformedInputError{Source: "body", Err: err}
	}
	return string(b), nil
}

func (w *Wrapper[B, Q, A]) validateBody(req *events.APIGatewayV2HTTPRequest) (B, error) {
	var zero B

	payload, err := rawBody(req)
	if err != nil {
		return zero, inputFailure(StageBody, err)
	}
	value, err := ValidateInput(w.body, payload)
	if err != nil {
		return zero, inputFailure(StageBody, err)
	}
	out, err := convert[B](value)
	if err != nil {
		return zero, inputFailure(StageBody, &MalformedInputError{Source: "body", Err: err})
	}
	return out, nil
}

func (w *Wrapper[B, Q, A]) parseQuery(req *events.APIGatewayV2HTTPRequest) (map[string]any, error) {
	params, err := query.Parse(req.RawQueryString)
	if err != nil {
		return nil, inputFailure(StageQuery, &MalformedInputError{Source: "query", Err: err})
	}
	return params, nil
}

func (w *Wrapper[B, Q, A]) validateQuery(params map[string]any) (Q, error) {
	var zero Q

	value, err := ValidateInput(w.query, params)
	if err != nil {
		return zero, inputFailure(StageQuery, err)
	}
	out, err := convert[Q](value)
	if err != nil {
		return zero, inputFailure(StageQuery, &MalformedInputError{Source: "query", Err: err})
	}
	return out, nil
}

// inputFailure turns a validation error into a 400 failure. Errors that are
// neither malformed input nor a validation error are returned as faults.
func inputFailure(stage Stage, err error) error {
	var (
		malformed *MalformedInputError
		invalid   *schema.ValidationError
	)
	switch {
	case errors.As(err, &malformed):
		if stage == StageQuery {
			malformed.Source = "query"
		}
		return fail(stage, response.BadRequest(malformed.Error()).
			WithCode(CodeMalformedInput).
			WithCause(malformed), err)
	case errors.As(err, &invalid):
		return fail(stage, response.BadRequest(fmt.Sprintf("invalid %s: %s", stage, invalid.Error())).
			WithCode(CodeValidation).
			WithCause(invalid), err)
	default:
		return fmt.Errorf("%s: %w", stage, err)
	}
}

// convert shapes a validated value into T. Strings are decoded as JSON
// unless T is itself a string type.
func convert[T any](v any) (T, error) {
	var out T
	switch val := v.(type) {
	case nil:
		return out, nil
	case T:
		return val, nil
	case string:
		if err := json.Unmarshal([]byte(val), &out); err != nil {
			return out, err
		}
		return out, nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return out, err
		}
		return out, nil
	}
}
