package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{"heading", "# Başlık", "<h1"},
		{"emphasis", "some *emphasis* here", "<em>emphasis</em>"},
		{"link", "[kalem](https://example.com)", `href="https://example.com"`},
		{"fenced code", "```go\nfmt.Println(\"hi\")\n```", "<pre"},
		{"raw html preserved", "<figure>photo</figure>", "<figure>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(html, tt.contains) {
				t.Errorf("output %q does not contain %q", html, tt.contains)
			}
		})
	}
}

func TestToHTMLEmpty(t *testing.T) {
	html, err := ToHTML("")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.TrimSpace(html) != "" {
		t.Errorf("empty source produced output: %q", html)
	}
}
