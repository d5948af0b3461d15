package feeds

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Interesting reports whether a headline is news rather than promotion
func Interesting(headline string) bool {
	h := " " + strings.ToLower(strings.TrimSpace(headline)) + " "
	if strings.TrimSpace(h) == "" {
		return false
	}
	for _, kw := range blockedKeywords {
		if strings.Contains(h, kw) {
			return false
		}
	}
	return true
}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed
func StripHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") {
		return normalizeWhitespace(trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return normalizeWhitespace(trimmed)
	}
	doc.Find("script, style, noscript, iframe").Remove()
	return normalizeWhitespace(doc.Text())
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
