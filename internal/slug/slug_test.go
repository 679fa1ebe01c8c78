package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation", "Hello, World! 2026", "hello-world-2026"},
		{"leading and trailing space", "  Trimmed Title  ", "trimmed-title"},
		{"consecutive separators", "a -- b", "a-b"},
		{"already slug", "already-a-slug", "already-a-slug"},
		{"empty", "", ""},
		{"symbols only", "!!!", ""},
		{"mixed case", "CamelCase Title", "camelcase-title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
