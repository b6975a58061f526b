package providers

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/Adda-Baaj/khobor-desk/internal/domain"
)

// responseSnippet returns a truncated snippet of the response body for logging.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// firstNonEmpty returns the first non-blank value, trimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// matchesQuery reports whether any word of text appears as a word of the
// item's title or keywords, ignoring case. An empty query matches everything.
func matchesQuery(item domain.FeedItem, text string) bool {
	words := tokenize(text)
	if len(words) == 0 {
		return true
	}
	tokens := lo.SliceToMap(tokenize(item.Title+" "+strings.Join(item.Keywords, " ")), func(t string) (string, struct{}) {
		return t, struct{}{}
	})
	return lo.SomeBy(words, func(w string) bool {
		_, ok := tokens[w]
		return ok
	})
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// newestFirst orders items by publication time, newest first, keeping the
// input order for ties and undated items.
func newestFirst(items []domain.FeedItem) {
	slices.SortStableFunc(items, func(a, b domain.FeedItem) int {
		return cmp.Compare(b.PublishedAt.UnixNano(), a.PublishedAt.UnixNano())
	})
}

// dedupe drops repeated URLs, keeping the first occurrence.
func dedupe(items []domain.FeedItem) []domain.FeedItem {
	return lo.UniqBy(items, func(item domain.FeedItem) string { return item.Key() })
}
