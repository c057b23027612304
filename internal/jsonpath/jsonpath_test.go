package jsonpath

import "testing"

func TestLookup(t *testing.T) {
	root := map[string]any{
		"text": "hello",
		"data": map[string]any{
			"items": []any{
				map[string]any{"value": "a"},
				map[string]any{"value": "b"},
			},
		},
		"results": []any{
			map[string]any{
				"alternatives": []any{
					map[string]any{"transcript": "ok", "confidence": 0.5},
				},
			},
		},
		"grid": []any{[]any{"x", "y"}},
	}

	cases := []struct {
		path string
		want string
		ok   bool
	}{
		{"data.items[1].value", "b", true},
		{"results[0].alternatives[0].transcript", "ok", true},
		{"results[0].alternatives[0].confidence", "0.5", true},
		{"grid[0][1]", "y", true},
		{"data.items[99].value", "", false},
		{"data.items", "", false},
		{"data..items", "", false},
		{"data.items[x]", "", false},
		{"text[0]", "", false},
	}
	for _, c := range cases {
		got, ok := Lookup(root, c.path)
		if ok != c.ok || got != c.want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q, %v", c.path, got, ok, c.want, c.ok)
		}
	}
}

func TestExtract(t *testing.T) {
	body := []byte(`{"results":[{"alternatives":[{"transcript":"deep"}]}],"text":"top"}`)
	if got := Extract(body, "results[0].alternatives[0].transcript"); got != "deep" {
		t.Fatalf("expected path hit, got %q", got)
	}
	if got := Extract(body, "missing.path"); got != "top" {
		t.Fatalf("expected text fallback, got %q", got)
	}
	if got := Extract([]byte(`{"count":42,"msg":"only string"}`), ""); got != "only string" {
		t.Fatalf("expected first string fallback, got %q", got)
	}
	if got := Extract([]byte(`{"text":42}`), ""); got != "42" {
		t.Fatalf("expected numeric text, got %q", got)
	}
	if got := Extract([]byte("not json"), "text"); got != "" {
		t.Fatalf("expected empty for invalid json, got %q", got)
	}
}
