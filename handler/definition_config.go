package handler

import (
	"encoding/json"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlDefinition struct {
	Method      string   `yaml:"method"`
	Path        string   `yaml:"path"`
	DisableAuth bool     `yaml:"disableAuth"`
	Scopes      []string `yaml:"scopes"`
	Schema      struct {
		Body     any `yaml:"body"`
		Query    any `yaml:"query"`
		Response any `yaml:"response"`
	} `yaml:"schema"`
}

// LoadDefinition parses a route definition from YAML:
//
//	method: GET
//	path: /items/{id}
//	disableAuth: false
//	scopes: [items.read]
//	schema:
//	  query:
//	    type: object
//	    properties:
//	      limit: {type: number}
func LoadDefinition(b []byte) (Definition, error) {
	var y yamlDefinition
	if err := yaml.Unmarshal(b, &y); err != nil {
		return Definition{}, fmt.Errorf("handler.LoadDefinition: %w", err)
	}

	def := Definition{
		Method:      y.Method,
		Path:        y.Path,
		DisableAuth: y.DisableAuth,
		Scopes:      y.Scopes,
	}
	var err error
	if def.Body, err = schemaJSON(y.Schema.Body); err != nil {
		return Definition{}, fmt.Errorf("handler.LoadDefinition: body schema: %w", err)
	}
	if def.Query, err = schemaJSON(y.Schema.Query); err != nil {
		return Definition{}, fmt.Errorf("handler.LoadDefinition: query schema: %w", err)
	}
	if def.Response, err = schemaJSON(y.Schema.Response); err != nil {
		return Definition{}, fmt.Errorf("handler.LoadDefinition: response schema: %w", err)
	}
	return def, nil
}

// LoadDefinitionFile reads a YAML route definition from path.
func LoadDefinitionFile(path string) (Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("handler.LoadDefinitionFile(%s): %w", path, err)
	}
	return LoadDefinition(b)
}

func schemaJSON(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	normalized, err := stringKeys(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

// stringKeys converts the map[interface{}]interface{} values produced by
// yaml.v2 into JSON compatible maps.
func stringKeys(v any) (any, error) {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			converted, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			converted, err := stringKeys(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}
