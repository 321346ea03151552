package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsShortText(t *testing.T) {
	s := strings.Repeat("a", 200)
	assert.Equal(t, s, TruncateWithoutBreakingWords(s, 200))

	assert.Equal(t, "short text", TruncateWithoutBreakingWords("short text", 200))
}

func TestTruncateCutsAtLastSpaceWithEllipsis(t *testing.T) {
	// 250 个字符、无句号：在 200 之前的最后一个空格处截断并补省略号
	s := strings.Repeat("abcd ", 50)
	got := TruncateWithoutBreakingWords(s, 200)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 202, len(got)) // 199 个字符 + "..."
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(got, "..."), "abc"), "should not cut mid-word")
}

func TestTruncatePrefersFirstSentence(t *testing.T) {
	s := "A tiny model. " + strings.Repeat("more words ", 30)
	assert.Equal(t, "A tiny model.", TruncateWithoutBreakingWords(s, 200))
}

func TestTruncateRewritesMarkdownLinksAndNewlines(t *testing.T) {
	got := TruncateWithoutBreakingWords("see [the docs](https://example.com)\nfor details", 200)
	assert.Equal(t, "see the docs for details", got)
}

func TestTruncateNoSpaceFallsBackToHardCut(t *testing.T) {
	s := strings.Repeat("x", 250)
	got := TruncateWithoutBreakingWords(s, 200)
	assert.Equal(t, strings.Repeat("x", 200)+"...", got)
}
