package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aura-studio/apifunc/response"
)

var (
	ErrInvalidDefinition   = errors.New("handler: invalid definition")
	ErrInvalidResponseType = errors.New("handler: invalid response type")
	ErrUnauthorized        = errors.New("handler: unauthorized")
)

const (
	CodeMissingPathParameter = "MISSING_PATH_PARAMETER"
	CodeMalformedInput       = "MALFORMED_INPUT"
	CodeValidation           = "VALIDATION_ERROR"
	CodeResponseValidation   = "RESPONSE_VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"

	unauthorizedMessage = "Unauthorized"
)

// MissingPathParameterError means the deployed route does not supply a
// parameter the definition declares. It is a configuration error.
type MissingPathParameterError struct {
	Route     string `json:"route"`
	Parameter string `json:"parameter"`
}

func (e *MissingPathParameterError) Error() string {
	return fmt.Sprintf("route %s: missing path parameter %q", e.Route, e.Parameter)
}

// MalformedInputError means a payload could not be decoded at all.
type MalformedInputError struct {
	Source string `json:"source"` // "body" or "query"
	Err    error  `json:"-"`
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Stage names a step of the dispatch pipeline.
type Stage string

const (
	StageBind      Stage = "bind"
	StageQuery     Stage = "query"
	StageBody      Stage = "body"
	StageAuthorize Stage = "authorize"
	StageHandler   Stage = "handler"
	StageResponse  Stage = "response"
)

// Failure is the terminal outcome of a stage. It carries the response to
// send; Reason is kept for logs and never serialized.
type Failure struct {
	Stage  Stage
	Err    *response.Error
	Reason error
}

func (f *Failure) Error() string {
	if f.Reason != nil {
		return fmt.Sprintf("%s: %v", f.Stage, f.Reason)
	}
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Reason }

func (f *Failure) Response() *response.Response {
	return response.Failed(f.Err)
}

func fail(stage Stage, herr *response.Error, reason error) *Failure {
	return &Failure{Stage: stage, Err: herr, Reason: reason}
}

// internalError is the body of every response produced from a fault.
func internalError() *response.Error {
	return response.Internal(http.StatusText(http.StatusInternalServerError))
}
