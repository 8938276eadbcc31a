package schema

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

const maxDepth = 64

// normalize applies coercion and stripping to value following the schema
// node s. Maps and slices are modified in place; scalars are returned.
func (v *Validator) normalize(s any, value any, depth int) any {
	node, ok := s.(map[string]any)
	if !ok || depth > maxDepth {
		return value
	}

	nodes := v.conjuncts(node, depth, map[uintptr]bool{})

	if v.coerce {
		for _, n := range nodes {
			if types := typesOf(n); len(types) > 0 {
				value = coerce(value, types)
			}
		}
	}
	value = v.normalizeAlternatives(nodes, value, depth)

	switch val := value.(type) {
	case map[string]any:
		v.normalizeObject(nodes, val, depth)
	case []any:
		for _, n := range nodes {
			v.normalizeArray(n, val, depth)
		}
	}
	return value
}

// conjuncts returns node followed by every schema the value must also match
// through $ref and allOf.
func (v *Validator) conjuncts(node map[string]any, depth int, seen map[uintptr]bool) []map[string]any {
	id := reflect.ValueOf(node).Pointer()
	if seen[id] || depth > maxDepth {
		return nil
	}
	seen[id] = true

	out := []map[string]any{node}
	if ref, ok := node["$ref"].(string); ok {
		if target, ok := v.resolve(ref); ok {
			if m, ok := target.(map[string]any); ok {
				out = append(out, v.conjuncts(m, depth+1, seen)...)
			}
		}
	}
	if all, ok := node["allOf"].([]any); ok {
		for _, sub := range all {
			if m, ok := sub.(map[string]any); ok {
				out = append(out, v.conjuncts(m, depth+1, seen)...)
			}
		}
	}
	return out
}

// normalizeAlternatives coerces value toward the branches of anyOf, oneOf
// and if/then/else. Branches never strip: a key unknown to one branch may
// belong to another.
func (v *Validator) normalizeAlternatives(nodes []map[string]any, value any, depth int) any {
	for _, node := range nodes {
		branches := alternativesOf(node)
		if len(branches) == 0 {
			continue
		}

		switch value.(type) {
		case map[string]any, []any:
			actual := jsonType(value)
			for _, b := range branches {
				types := v.branchTypes(b, depth)
				if len(types) == 0 || contains(types, actual) {
					loose := *v
					loose.strip = false
					value = loose.normalize(b, value, depth+1)
					break
				}
			}
		default:
			if !v.coerce {
				continue
			}
			var types []string
			for _, b := range branches {
				types = append(types, v.branchTypes(b, depth)...)
			}
			if len(types) > 0 {
				value = coerce(value, types)
			}
		}
	}
	return value
}

func alternativesOf(node map[string]any) []any {
	var branches []any
	for _, key := range []string{"anyOf", "oneOf"} {
		if list, ok := node[key].([]any); ok {
			branches = append(branches, list...)
		}
	}
	for _, key := range []string{"then", "else"} {
		if sub, ok := node[key].(map[string]any); ok {
			branches = append(branches, sub)
		}
	}
	return branches
}

// branchTypes lists the types a branch declares directly or through its
// conjuncts, in order.
func (v *Validator) branchTypes(branch any, depth int) []string {
	node, ok := branch.(map[string]any)
	if !ok {
		return nil
	}
	var types []string
	for _, n := range v.conjuncts(node, depth+1, map[uintptr]bool{}) {
		types = append(types, typesOf(n)...)
	}
	return types
}

func contains(types []string, t string) bool {
	for _, candidate := range types {
		if candidate == t || (candidate == "number" && t == "integer") {
			return true
		}
	}
	return false
}

// normalizeObject walks obj against the merged shape of nodes. A key is
// stripped only when no node declares it.
func (v *Validator) normalizeObject(nodes []map[string]any, obj map[string]any, depth int) {
	// A bare object schema is a free-form map; only declared shapes are stripped.
	declared, open := false, false
	for _, node := range nodes {
		props, _ := node["properties"].(map[string]any)
		patterns, _ := node["patternProperties"].(map[string]any)
		additional := node["additionalProperties"]
		if props != nil || patterns != nil || additional == false {
			declared = true
		}
		if extra, ok := additional.(bool); ok && extra {
			open = true
		}
	}

	for key, child := range obj {
		known := false
		for _, node := range nodes {
			props, _ := node["properties"].(map[string]any)
			if sub, ok := props[key]; ok {
				child = v.normalize(sub, child, depth+1)
				known = true
			}
			patterns, _ := node["patternProperties"].(map[string]any)
			for _, sub := range matchPatterns(patterns, key) {
				child = v.normalize(sub, child, depth+1)
				known = true
			}
		}
		if !known {
			for _, node := range nodes {
				if sub, ok := node["additionalProperties"].(map[string]any); ok {
					child = v.normalize(sub, child, depth+1)
					known = true
				}
			}
		}

		if !known && v.strip && declared && !open {
			delete(obj, key)
			continue
		}
		obj[key] = child
	}
}

func (v *Validator) normalizeArray(node map[string]any, arr []any, depth int) {
	rest := 0
	if prefix, ok := node["prefixItems"].([]any); ok {
		for i := 0; i < len(prefix) && i < len(arr); i++ {
			arr[i] = v.normalize(prefix[i], arr[i], depth+1)
		}
		rest = len(prefix)
	}

	switch items := node["items"].(type) {
	case map[string]any:
		for i := rest; i < len(arr); i++ {
			arr[i] = v.normalize(items, arr[i], depth+1)
		}
	case []any:
		// tuple form of drafts 4 to 7
		for i := 0; i < len(items) && i < len(arr); i++ {
			arr[i] = v.normalize(items[i], arr[i], depth+1)
		}
		if sub, ok := node["additionalItems"].(map[string]any); ok {
			for i := len(items); i < len(arr); i++ {
				arr[i] = v.normalize(sub, arr[i], depth+1)
			}
		}
	}
}

// resolve looks up a local JSON pointer reference such as "#/$defs/id".
func (v *Validator) resolve(ref string) (any, bool) {
	if !strings.HasPrefix(ref, "#") {
		return nil, false
	}
	var cur any = v.root
	pointer := strings.TrimPrefix(ref, "#")
	if pointer == "" {
		return cur, true
	}
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[tok]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func matchPatterns(patterns map[string]any, key string) []any {
	var matched []any
	for pattern, sub := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(key) {
			matched = append(matched, sub)
		}
	}
	return matched
}

func typesOf(node map[string]any) []string {
	switch t := node["type"].(type) {
	case string:
		return []string{t}
	case []any:
		types := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

// coerce converts value to the first of types it can be converted to
// without ambiguity. Values already of an accepted type are kept.
func coerce(value any, types []string) any {
	actual := jsonType(value)
	for _, t := range types {
		if t == actual || (t == "number" && actual == "integer") {
			return value
		}
	}

	for _, t := range types {
		if out, ok := coerceTo(value, t); ok {
			return out
		}
	}
	return value
}

func coerceTo(value any, t string) (any, bool) {
	switch t {
	case "number", "integer":
		var f float64
		switch val := value.(type) {
		case string:
			if val == "" {
				return nil, false
			}
			n, err := strconv.ParseFloat(val, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, false
			}
			f = n
		case bool:
			if val {
				f = 1
			}
		case nil:
			f = 0
		default:
			return nil, false
		}
		if t == "integer" && f != math.Trunc(f) {
			return nil, false
		}
		return f, true

	case "string":
		switch val := value.(type) {
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(val), true
		case nil:
			return "", true
		}

	case "boolean":
		switch val := value.(type) {
		case string:
			switch val {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		case float64:
			switch val {
			case 1:
				return true, true
			case 0:
				return false, true
			}
		case nil:
			return false, true
		}

	case "null":
		switch val := value.(type) {
		case string:
			if val == "" {
				return nil, true
			}
		case float64:
			if val == 0 {
				return nil, true
			}
		case bool:
			if !val {
				return nil, true
			}
		}
	}
	return nil, false
}

func jsonType(value any) string {
	switch val := value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return "integer"
		}
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return ""
}
