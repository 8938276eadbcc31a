package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodPatch  = http.MethodPatch
	MethodDelete = http.MethodDelete
)

// Definition is the static description of one route. It is built once when
// the handler is registered and never modified afterwards.
type Definition struct {
	Method      string   `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Path        string   `json:"path" validate:"required,startswith=/"`
	DisableAuth bool     `json:"disableAuth"`
	Scopes      []string `json:"scopes,omitempty" validate:"dive,required"`

	// JSON Schema documents. Empty means no contract.
	Body     json.RawMessage `json:"body,omitempty"`
	Query    json.RawMessage `json:"query,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

var validate = validator.New()

// Validate checks the definition's static fields.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrInvalidDefinition, d.Method, d.Path, err)
	}
	for _, seg := range strings.Split(d.Path, "/") {
		if strings.ContainsAny(seg, "{}") && !isParamSegment(seg) {
			return fmt.Errorf("%w: %s %s: malformed path segment %q", ErrInvalidDefinition, d.Method, d.Path, seg)
		}
	}
	return nil
}

// Route returns the route key, e.g. "GET /items/{id}".
func (d *Definition) Route() string {
	return d.Method + " " + d.Path
}

// PathParameters lists the parameter names declared by the path template in
// the order they appear. A greedy segment "{proxy+}" declares "proxy".
func (d *Definition) PathParameters() []string {
	var names []string
	for _, seg := range strings.Split(d.Path, "/") {
		if isParamSegment(seg) {
			names = append(names, strings.TrimSuffix(seg[1:len(seg)-1], "+"))
		}
	}
	return names
}

func isParamSegment(seg string) bool {
	if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
		return false
	}
	name := strings.TrimSuffix(seg[1:len(seg)-1], "+")
	return name != "" && !strings.ContainsAny(name, "{}+")
}
