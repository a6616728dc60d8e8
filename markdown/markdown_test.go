package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("This is **bold** and ~~gone~~.")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<del>gone</del>")
}

func TestToHTML_DropsRawHTML(t *testing.T) {
	out, err := ToHTML("<script>alert(1)</script>\n\nhello")
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>hello</p>")
}

func TestExcerpt_PlainText(t *testing.T) {
	got := Excerpt("# Hello\n\nThis is **bold** text &amp; more.", ExcerptLength)
	assert.Equal(t, "Hello This is bold text & more.", got)
}

func TestExcerpt_TruncatesOnWordBoundary(t *testing.T) {
	source := strings.Repeat("word ", 60)

	got := Excerpt(source, 22)

	assert.Equal(t, "word word word word…", got)
	assert.LessOrEqual(t, len([]rune(got)), 23)
}

func TestExcerpt_UnbrokenTextStaysWithinLimit(t *testing.T) {
	got := Excerpt(strings.Repeat("a", 500), ExcerptLength)

	assert.Len(t, []rune(got), ExcerptLength)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestExcerpt_ShortInputUntouched(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 200))
	assert.Equal(t, "", Excerpt("", 200))
}
