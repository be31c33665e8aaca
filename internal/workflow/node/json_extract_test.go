package node

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", "Sure thing:\n{\"a\":1}\nHope that helps!", `{"a":1}`},
		{"array value", `[1,2,3]`, `[1,2,3]`},
		{"nested braces", `noise {"a":{"b":2}} trailing`, `{"a":{"b":2}}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONObject(tt.in)
			if got != tt.want {
				t.Fatalf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.want != "" && !json.Valid([]byte(got)) {
				t.Fatalf("extracted payload is not valid JSON: %q", got)
			}
		})
	}
}

func TestExtractJSONObjectPassesThroughGarbage(t *testing.T) {
	in := "no json here at all"
	if got := ExtractJSONObject(in); got != in {
		t.Fatalf("garbage input should come back unchanged, got %q", got)
	}
}

func TestTruncateByRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"hello", 0, ""},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := TruncateByRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateByRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
