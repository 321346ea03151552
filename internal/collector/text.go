package collector

import (
	"regexp"
	"strings"
)

var markdownLinkRe = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// TruncateWithoutBreakingWords 把自由文本压成一段不超过 n 个字符的介绍：
// 换行折叠为空格、Markdown 链接只留文字；超长时优先在第一个句号处截断，
// 仍超长则退到 n 之前最后一个空格并补省略号。
func TruncateWithoutBreakingWords(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = markdownLinkRe.ReplaceAllString(s, "$1")

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	firstSentence := runes
	if idx := strings.Index(s, "."); idx != -1 {
		firstSentence = []rune(s[:idx+1])
	}
	if len(firstSentence) <= n {
		return string(firstSentence)
	}

	truncated := string(firstSentence[:n])
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace == -1 {
		return truncated + "..."
	}
	return truncated[:lastSpace] + "..."
}
