// Package textutil holds the stateless text helpers used by extraction and
// model-output reconciliation.
package textutil

import (
	"sort"
	"strings"
	"unicode"
)

// TruncationMarker is appended to text clipped by Truncate.
const TruncationMarker = "…"

// CollapseWhitespace replaces runs of whitespace, non-breaking spaces
// included, with a single space and trims the result.
func CollapseWhitespace(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// Truncate collapses whitespace and clips the result to max runes,
// appending TruncationMarker when clipped. Text of exactly max runes is
// returned unchanged.
func Truncate(s string, max int) string {
	cleaned := CollapseWhitespace(s)
	if max <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= max {
		return cleaned
	}
	return string(runes[:max]) + TruncationMarker
}

// TopKeywords ranks the tokens of text by frequency. Tokens are lowercased,
// stripped of punctuation (hyphens are kept), and dropped when shorter than
// three runes or present in stop. Ties keep first-encounter order.
func TopKeywords(text string, max int, stop map[string]struct{}) []string {
	if text == "" || max <= 0 {
		return []string{}
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || r == '-' {
			return r
		}
		return ' '
	}, strings.ToLower(CollapseWhitespace(text)))

	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(cleaned) {
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, skip := stop[tok]; skip {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// Dedupe returns items without repeats, keeping first occurrences in order.
// The result is never nil.
func Dedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SplitList splits a comma-separated list, trimming entries and dropping
// blanks.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := CollapseWhitespace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
