package engine

import (
	"strings"
	"testing"
)

func TestNormalizeDocumentPlainText(t *testing.T) {
	got := NormalizeDocument("  plain text resume  ")
	if got != "plain text resume" {
		t.Errorf("got %q, want trimmed passthrough", got)
	}
}

func TestNormalizeDocumentHTML(t *testing.T) {
	in := "<html><body><h1>Supply Chain Manager</h1><ul><li>procurement</li><li>logistics</li></ul></body></html>"
	got := NormalizeDocument(in)
	if strings.Contains(got, "<") {
		t.Errorf("markup left in output: %q", got)
	}
	for _, want := range []string{"Supply Chain Manager", "procurement", "logistics"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
}

func TestFlattenHTMLDropsScripts(t *testing.T) {
	in := "<html><body><p>visible</p><script>alert('x')</script><style>p{}</style></body></html>"
	got := FlattenHTML(in)
	if !strings.Contains(got, "visible") {
		t.Errorf("visible text lost: %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "p{}") {
		t.Errorf("script/style content leaked: %q", got)
	}
}

func TestCleanHTML(t *testing.T) {
	got := CleanHTML("<p>hello <b>world</b></p>")
	if strings.Contains(got, "<") {
		t.Errorf("tags left: %q", got)
	}
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("text lost: %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		limit  int
		suffix string
		want   string
	}{
		{"short passthrough", "hello", 10, "...", "hello"},
		{"exact limit", "hello", 5, "...", "hello"},
		{"truncated", "hello world", 5, "...", "hello..."},
		{"cyrillic", "привет мир", 6, "…", "привет…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.limit, tt.suffix); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}
