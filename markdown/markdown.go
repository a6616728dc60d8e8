package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExcerptLength is the default excerpt size in runes.
const ExcerptLength = 200

// Raw HTML in post bodies is dropped (goldmark's default, unsafe mode off).
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Excerpt renders source and returns its plain text, collapsed to single
// spaces and cut at a word boundary when longer than max runes.
func Excerpt(source string, max int) string {
	rendered, err := ToHTML(source)
	if err != nil {
		rendered = source
	}
	text := html.UnescapeString(tagPattern.ReplaceAllString(rendered, ""))
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}

	// leave room for the ellipsis so the result stays within max runes
	cut := string(runes[:max-1])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
