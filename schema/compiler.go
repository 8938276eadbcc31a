// Package schema compiles JSON Schema documents into reusable validators.
//
// A Validator coerces primitive values to the declared types and strips
// undeclared properties before handing the value to the jsonschema engine,
// so callers must not rely on excess or mistyped fields surviving validation.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compiler owns one jsonschema engine instance. Every document compiled by it
// is registered under its own in-memory resource URL.
type Compiler struct {
	*Options
	mu     sync.Mutex
	engine *jsonschema.Compiler
}

func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		Options: NewOptions(opts...),
		engine:  jsonschema.NewCompiler(),
	}
	if draft, err := draftOf(c.Draft); err == nil && draft != nil {
		c.engine.Draft = draft
	}
	return c
}

// Compile turns doc into a Validator. An empty or null document yields a nil
// Validator and no error: there is nothing to validate against.
func (c *Compiler) Compile(doc []byte) (*Validator, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return nil, nil
	}

	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("schema: decode document: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	url := "mem://schemas/" + uuid.NewString() + ".json"
	if err := c.engine.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("schema: add resource: %w", err)
	}
	compiled, err := c.engine.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}

	return &Validator{
		schema: compiled,
		root:   root,
		coerce: c.CoerceTypes,
		strip:  c.RemoveAdditional,
	}, nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile(doc []byte) *Validator {
	v, err := c.Compile(doc)
	if err != nil {
		panic(err)
	}
	return v
}
