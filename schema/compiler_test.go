package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name":   {"type": "string"},
		"age":    {"type": "integer"},
		"active": {"type": "boolean"},
		"tags":   {"type": "array", "items": {"type": "number"}}
	},
	"required": ["name"]
}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestCompiler_EmptyDocument(t *testing.T) {
	c := NewCompiler()
	for _, doc := range []string{"", "  ", "null"} {
		v, err := c.Compile([]byte(doc))
		require.NoError(t, err)
		assert.Nil(t, v, "doc %q", doc)
	}
}

func TestCompiler_InvalidDocument(t *testing.T) {
	c := NewCompiler()

	_, err := c.Compile([]byte(`{"type":`))
	assert.Error(t, err)

	_, err = c.Compile([]byte(`{"type": 12}`))
	assert.Error(t, err)
}

func TestValidator_CoercesAndStrips(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(personSchema))

	out, err := v.Validate(decode(t, `{"name": 7, "age": "42", "active": "true", "tags": ["1.5", 2], "extra": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":   "7",
		"age":    float64(42),
		"active": true,
		"tags":   []any{1.5, float64(2)},
	}, out)
}

func TestValidator_CoercionIsObservableInPlace(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{"type":"object","properties":{"limit":{"type":"number"}}}`))

	in := map[string]any{"limit": "10", "offset": "3"}
	_, err := v.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": float64(10)}, in)
}

func TestValidator_CoerceRootScalar(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{"type":"integer"}`))

	out, err := v.Validate("12")
	require.NoError(t, err)
	assert.Equal(t, float64(12), out)

	_, err = v.Validate("12.5")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Keyword)
}

func TestValidator_CoercionDisabled(t *testing.T) {
	v := NewCompiler(WithCoerceTypes(false)).MustCompile([]byte(`{"type":"object","properties":{"limit":{"type":"number"}}}`))

	_, err := v.Validate(map[string]any{"limit": "10"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "/limit", ve.InstanceLocation)
}

func TestValidator_RemoveAdditionalDisabled(t *testing.T) {
	v := NewCompiler(WithRemoveAdditional(false)).MustCompile([]byte(personSchema))

	out, err := v.Validate(decode(t, `{"name":"a","extra":1}`))
	require.NoError(t, err)
	assert.Contains(t, out, "extra")
}

func TestValidator_FreeFormObjectKeepsProperties(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{"type":"object"}`))

	out, err := v.Validate(decode(t, `{"a":1,"b":{"c":2}}`))
	require.NoError(t, err)
	assert.Equal(t, decode(t, `{"a":1,"b":{"c":2}}`), out)
}

func TestValidator_AdditionalPropertiesSchema(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"additionalProperties": {"type": "integer"}
	}`))

	out, err := v.Validate(decode(t, `{"id": 1, "count": "3"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "count": float64(3)}, out)
}

func TestValidator_PatternProperties(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"type": "object",
		"patternProperties": {"^x-": {"type": "boolean"}}
	}`))

	out, err := v.Validate(decode(t, `{"x-debug": "false", "other": 1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x-debug": false}, out)
}

func TestValidator_LocalRef(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"$defs": {"page": {"type": "object", "properties": {"size": {"type": "integer"}}}},
		"type": "object",
		"properties": {"page": {"$ref": "#/$defs/page"}}
	}`))

	out, err := v.Validate(decode(t, `{"page": {"size": "20", "junk": true}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"page": map[string]any{"size": float64(20)}}, out)
}

func TestValidator_AllOfMergesDeclaredProperties(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"type": "object",
		"allOf": [
			{"properties": {"a": {"type": "string"}}, "required": ["a"]},
			{"properties": {"b": {"type": "integer"}}, "required": ["b"]}
		]
	}`))

	in := decode(t, `{"a": "x", "b": "1", "junk": true}`)
	out, err := v.Validate(in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "b": float64(1)}, out)
}

func TestValidator_RefWithSiblingProperties(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"$defs": {"base": {"type": "object", "properties": {"id": {"type": "integer"}}, "required": ["id"]}},
		"$ref": "#/$defs/base",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`))

	out, err := v.Validate(decode(t, `{"id": "1", "name": "n", "junk": 0}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "n"}, out)
}

func TestValidator_CoercesIntoAlternatives(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"type": "object",
		"properties": {
			"limit": {"anyOf": [{"type": "number"}, {"type": "null"}]},
			"flag":  {"oneOf": [{"type": "boolean"}, {"type": "array"}]},
			"page":  {"oneOf": [
				{"type": "object", "properties": {"n": {"type": "integer"}}, "required": ["n"]},
				{"type": "string"}
			]}
		}
	}`))

	out, err := v.Validate(decode(t, `{"limit": "10", "flag": "true", "page": {"n": "3", "cursor": "c"}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"limit": float64(10),
		"flag":  true,
		// branches only coerce, so keys unknown to one branch survive
		"page": map[string]any{"n": float64(3), "cursor": "c"},
	}, out)

	out, err = v.Validate(decode(t, `{"limit": ""}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": nil}, out)
}

func TestValidator_CoercesIntoConditionalBranches(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(`{
		"type": "object",
		"properties": {
			"kind": {"type": "string"},
			"size": {
				"if": {"type": "string", "maxLength": 0},
				"then": {"type": "null"},
				"else": {"type": "integer"}
			}
		}
	}`))

	out, err := v.Validate(decode(t, `{"kind": "a", "size": "4"}`))
	require.NoError(t, err)
	assert.Equal(t, float64(4), out.(map[string]any)["size"])
}

func TestValidator_FirstErrorOnly(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(personSchema))

	_, err := v.Validate(map[string]any{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Keyword)
	assert.Contains(t, ve.Message, "name")
	assert.Equal(t, "", ve.InstanceLocation)
	assert.Equal(t, ve.Message, ve.Error())
}

func TestValidator_NestedErrorLocation(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(personSchema))

	_, err := v.Validate(decode(t, `{"name":"a","tags":["x"]}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "/tags/0", ve.InstanceLocation)
	assert.False(t, errors.Is(err, ErrNoErrorDetail))
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(personSchema))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := v.Validate(map[string]any{"name": "n", "age": strconv.Itoa(i)})
			assert.NoError(t, err)
			assert.Equal(t, float64(i), out.(map[string]any)["age"])
		}(i)
	}
	wg.Wait()
}

func TestWithDraft_Unknown(t *testing.T) {
	assert.Panics(t, func() { NewCompiler(WithDraft("3")) })
	assert.NotPanics(t, func() { NewCompiler(WithDraft("7")) })
}

func TestValidator_Idempotent(t *testing.T) {
	v := NewCompiler().MustCompile([]byte(personSchema))

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("validating a conforming value twice yields the same output", prop.ForAll(
		func(name string, age int, extra string) bool {
			in := map[string]any{"name": name, "age": strconv.Itoa(age), "extra": extra}
			first, err := v.Validate(in)
			if err != nil {
				return false
			}
			again := map[string]any{"name": name, "age": strconv.Itoa(age), "extra": extra}
			second, err := v.Validate(again)
			if err != nil {
				return false
			}
			third, err := v.Validate(first)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(first, second) && reflect.DeepEqual(first, third)
		},
		gen.AlphaString(),
		gen.IntRange(-1000, 1000),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
