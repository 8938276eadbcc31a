package handler

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestBindPathParameters(t *testing.T) {
	bound, missing, ok := BindPathParameters(map[string]string{"id": "42", "extra": "x"}, []string{"id"})
	assert.True(t, ok)
	assert.Empty(t, missing)
	assert.Equal(t, map[string]string{"id": "42"}, bound)

	_, missing, ok = BindPathParameters(map[string]string{"b": "2"}, []string{"a", "b", "c"})
	assert.False(t, ok)
	assert.Equal(t, "a", missing)

	_, missing, ok = BindPathParameters(map[string]string{"a": ""}, []string{"a"})
	assert.False(t, ok)
	assert.Equal(t, "a", missing)

	bound, _, ok = BindPathParameters(nil, nil)
	assert.True(t, ok)
	assert.NotNil(t, bound)
	assert.Empty(t, bound)
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "p" + strconv.Itoa(i)
	}
	return out
}

func TestBindPathParameters_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(42)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("binds exactly the declared names", prop.ForAll(
		func(n int, value string) bool {
			declared := names(n)
			raw := map[string]string{"undeclared": value}
			for _, name := range declared {
				raw[name] = value + name
			}
			bound, _, ok := BindPathParameters(raw, declared)
			if !ok || len(bound) != n {
				return false
			}
			for _, name := range declared {
				if bound[name] != value+name {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.AlphaString(),
	))

	properties.Property("reports the first missing name in declaration order", prop.ForAll(
		func(n int, gap int) bool {
			declared := names(n)
			gap = gap % n
			raw := map[string]string{}
			for i, name := range declared {
				if i != gap {
					raw[name] = "v"
				}
			}
			// names after the gap may also be absent
			if gap+1 < n {
				delete(raw, declared[n-1])
			}
			_, missing, ok := BindPathParameters(raw, declared)
			return !ok && missing == declared[gap]
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
