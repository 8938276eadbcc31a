package response

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is a failure that knows its HTTP status. Handlers return it to
// choose the status of their failure response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   any    `json:"cause,omitempty"`
}

func NewError(status int, message string) *Error {
	return &Error{
		Status:  status,
		Code:    CodeFromStatus(status),
		Message: message,
	}
}

func BadRequest(message string) *Error { return NewError(http.StatusBadRequest, message) }

func Unauthorized(message string) *Error { return NewError(http.StatusUnauthorized, message) }

func Forbidden(message string) *Error { return NewError(http.StatusForbidden, message) }

func NotFound(message string) *Error { return NewError(http.StatusNotFound, message) }

func Internal(message string) *Error { return NewError(http.StatusInternalServerError, message) }

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

func (e *Error) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// WithCode returns a copy of e with Code replaced.
func (e *Error) WithCode(code string) *Error {
	c := *e
	c.Code = code
	return &c
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause any) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// CodeFromStatus turns a status into a machine readable code, e.g.
// 400 -> "BAD_REQUEST".
func CodeFromStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return fmt.Sprintf("HTTP_%d", status)
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
