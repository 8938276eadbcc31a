// Package query parses URL-encoded query strings into nested values.
//
// Bracket syntax builds maps and arrays:
//
//	a=1&a=2          -> {"a": ["1", "2"]}
//	a[b]=1           -> {"a": {"b": "1"}}
//	a[]=1&a[]=2      -> {"a": ["1", "2"]}
//	a[1]=y&a[0]=x    -> {"a": ["x", "y"]}
//	a[b][0][c]=1     -> {"a": {"b": [{"c": "1"}]}}
//
// All leaf values are strings; typing is left to schema coercion.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// MaxDepth is the number of bracket segments parsed per key. Deeper
	// segments are kept together as one literal key.
	MaxDepth = 5
	// MaxIndex is the largest bracket index read as an array position.
	// Larger indices are map keys.
	MaxIndex = 20
)

var ErrMalformed = errors.New("query: malformed query string")

// Parse decodes raw into a nested map. An empty string yields an empty,
// non-nil map.
func Parse(raw string) (map[string]any, error) {
	raw = strings.TrimPrefix(raw, "?")
	root := newNode()

	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformed, rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrMalformed, key, err)
		}
		if key == "" {
			continue
		}

		segments, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		if err := root.insert(segments, value); err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
		}
	}

	out := make(map[string]any, len(root.fields))
	for _, k := range root.keys {
		out[k] = root.fields[k].value()
	}
	return out, nil
}

type segmentKind int

const (
	keySegment segmentKind = iota
	appendSegment
	indexSegment
)

type segment struct {
	kind  segmentKind
	key   string
	index int
}

// splitKey breaks "a[b][]" into its segments.
func splitKey(key string) ([]segment, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return []segment{{kind: keySegment, key: key}}, nil
	}

	var segments []segment
	if open > 0 {
		segments = append(segments, segment{kind: keySegment, key: key[:open]})
	}

	rest := key[open:]
	depth := 0
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("%w: key %q: unexpected %q after bracket", ErrMalformed, key, rest)
		}
		if depth == MaxDepth {
			segments = append(segments, segment{kind: keySegment, key: rest})
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: key %q: unbalanced bracket", ErrMalformed, key)
		}
		segments = append(segments, parseSegment(rest[1:end]))
		rest = rest[end+1:]
		depth++
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: key %q: empty key", ErrMalformed, key)
	}
	return segments, nil
}

func parseSegment(s string) segment {
	if s == "" {
		return segment{kind: appendSegment}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= MaxIndex && strconv.Itoa(n) == s {
		return segment{kind: indexSegment, index: n}
	}
	return segment{kind: keySegment, key: s}
}

type node struct {
	fields map[string]*node
	keys   []string
	values []string
	named  bool // addressed by at least one non-index key
	next   int  // next position for an append segment
}

func newNode() *node {
	return &node{fields: map[string]*node{}}
}

func (n *node) insert(segments []segment, value string) error {
	if len(segments) == 0 {
		if len(n.fields) > 0 {
			return errors.New("value conflicts with nested keys")
		}
		n.values = append(n.values, value)
		return nil
	}
	if len(n.values) > 0 {
		return errors.New("nested keys conflict with value")
	}

	seg := segments[0]
	var key string
	switch seg.kind {
	case appendSegment:
		key = strconv.Itoa(n.next)
		n.next++
	case indexSegment:
		key = strconv.Itoa(seg.index)
		if seg.index >= n.next {
			n.next = seg.index + 1
		}
	default:
		key = seg.key
		n.named = true
	}

	child, ok := n.fields[key]
	if !ok {
		child = newNode()
		n.fields[key] = child
		n.keys = append(n.keys, key)
	}
	return child.insert(segments[1:], value)
}

func (n *node) value() any {
	if len(n.fields) == 0 {
		if len(n.values) == 1 {
			return n.values[0]
		}
		out := make([]any, len(n.values))
		for i, v := range n.values {
			out[i] = v
		}
		return out
	}

	if !n.named {
		indices := make([]int, 0, len(n.keys))
		for _, k := range n.keys {
			i, _ := strconv.Atoi(k)
			indices = append(indices, i)
		}
		sort.Ints(indices)
		out := make([]any, 0, len(indices))
		for _, i := range indices {
			out = append(out, n.fields[strconv.Itoa(i)].value())
		}
		return out
	}

	out := make(map[string]any, len(n.fields))
	for _, k := range n.keys {
		out[k] = n.fields[k].value()
	}
	return out
}
