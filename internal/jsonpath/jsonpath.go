// Package jsonpath pulls a transcript out of a JSON response using a
// dotted path such as "results[0].alternatives[0].transcript".
package jsonpath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// step is one hop through the decoded document: a map key or an array index.
type step struct {
	key   string
	index int
	isIdx bool
}

// Extract decodes body and returns the value at path. When path is empty or
// does not resolve, it falls back to a top-level "text" field and then to
// the first non-empty string field.
func Extract(body []byte, path string) string {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return ""
	}
	if path != "" {
		if v, ok := Lookup(root, path); ok {
			return v
		}
	}
	m, ok := root.(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := scalar(m["text"]); ok {
		return v
	}
	for _, v := range m {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Lookup walks root along path and formats the scalar it lands on.
func Lookup(root any, path string) (string, bool) {
	steps, err := compile(path)
	if err != nil || len(steps) == 0 {
		return "", false
	}
	cur := root
	for _, s := range steps {
		if s.isIdx {
			arr, ok := cur.([]any)
			if !ok || s.index < 0 || s.index >= len(arr) {
				return "", false
			}
			cur = arr[s.index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[s.key]; !ok {
			return "", false
		}
	}
	return scalar(cur)
}

// compile splits path into steps. "a.b[2][0]" yields a, b, 2, 0.
func compile(path string) ([]step, error) {
	if path == "" {
		return nil, nil
	}
	var steps []step
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, fmt.Errorf("empty segment in %q", path)
		}
		key, rest, found := strings.Cut(seg, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		}
		if !found {
			continue
		}
		rest = "[" + rest
		for rest != "" {
			if rest[0] != '[' {
				return nil, fmt.Errorf("unexpected %q in %q", rest, seg)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("missing ] in %q", seg)
			}
			n, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, fmt.Errorf("bad index %q in %q", rest[1:end], seg)
			}
			steps = append(steps, step{index: n, isIdx: true})
			rest = rest[end+1:]
		}
	}
	return steps, nil
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}
