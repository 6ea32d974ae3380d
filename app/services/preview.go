package services

import (
	"strings"
	"unicode/utf8"

	"scribe/app/models"

	"golang.org/x/net/html"
)

const (
	previewRunes   = 120
	wordsPerMinute = 200
)

// PlainText strips markup from rich post content and collapses whitespace.
// Script and style bodies are dropped.
func PlainText(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}

// Preview returns the stored excerpt when present, otherwise the first
// previewRunes runes of the plain-text content followed by "...".
func Preview(post *models.Post) string {
	if excerpt := strings.TrimSpace(post.Excerpt); excerpt != "" {
		return excerpt
	}
	text := PlainText(post.Content)
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:previewRunes])) + "..."
}

// ReadMinutes estimates reading time at wordsPerMinute, never less than one.
func ReadMinutes(content string) int {
	words := len(strings.Fields(PlainText(content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
