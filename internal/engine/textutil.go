package engine

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// looksLikeHTML reports whether s contains markup worth converting.
func looksLikeHTML(s string) bool {
	return strings.Contains(s, "</") || strings.Contains(s, "/>") ||
		strings.Contains(strings.ToLower(s), "<br") || strings.Contains(strings.ToLower(s), "<p>")
}

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, " "))
}

// NormalizeDocument converts an HTML job description or email body to plain
// text. Markdown conversion preserves list structure (keyword phrases often
// live in bullet lists); falls back to tag stripping on malformed input.
func NormalizeDocument(s string) string {
	if !looksLikeHTML(s) {
		return strings.TrimSpace(s)
	}
	if md, err := htmltomarkdown.ConvertString(s); err == nil && md != "" {
		return strings.TrimSpace(md)
	}
	if text := FlattenHTML(s); text != "" {
		return text
	}
	return CleanHTML(s)
}

// FlattenHTML extracts the visible text of an HTML fragment, dropping
// script/style content. Returns "" when parsing fails.
func FlattenHTML(s string) string {
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.TrimSpace(sb.String())
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + suffix
}
