package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrNoErrorDetail is returned when the engine rejects a value without
// describing why. It indicates a broken engine, not bad input.
var ErrNoErrorDetail = errors.New("schema: validation failed without error detail")

// ValidationError is the first violation reported by the engine.
type ValidationError struct {
	InstanceLocation string `json:"instancePath"`
	KeywordLocation  string `json:"schemaPath"`
	Keyword          string `json:"keyword"`
	Message          string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.InstanceLocation == "" {
		return e.Message
	}
	return e.InstanceLocation + ": " + e.Message
}

// Validator is a compiled schema. It is immutable and safe for concurrent use;
// the values it validates are not.
type Validator struct {
	schema *jsonschema.Schema
	root   any
	coerce bool
	strip  bool
}

// Validate normalizes value in place and checks it against the schema. The
// normalized value is returned in both the success and failure cases.
func (v *Validator) Validate(value any) (any, error) {
	value = v.normalize(v.root, value, 0)

	err := v.schema.Validate(value)
	if err == nil {
		return value, nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return value, fmt.Errorf("%w: %v", ErrNoErrorDetail, err)
	}
	first := firstLeaf(ve)
	if first.Message == "" {
		return value, ErrNoErrorDetail
	}
	return value, &ValidationError{
		InstanceLocation: first.InstanceLocation,
		KeywordLocation:  first.KeywordLocation,
		Keyword:          lastSegment(first.KeywordLocation),
		Message:          first.Message,
	}
}

// firstLeaf follows the first cause down to the most specific error.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 && ve.Causes[0] != nil {
		ve = ve.Causes[0]
	}
	return ve
}

func lastSegment(pointer string) string {
	if i := strings.LastIndexByte(pointer, '/'); i >= 0 {
		return pointer[i+1:]
	}
	return pointer
}
