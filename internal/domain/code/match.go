// Package code implements voucher-code detection and identity. A code is a
// hyphen-grouped alphanumeric token in one of two shapes: short (4-4-4) or
// long (4-4-12-6). Matching is case-insensitive; the canonical display form
// is upper-case with hyphens kept. Deduplication identity is computed by
// Normalize, which folds the long form into the short form's key space.
package code

import (
	"regexp"
	"strings"
)

// Code shape patterns. The long pattern runs first and its spans are masked
// before the short pattern runs, so a long code is never also reported as a
// short code.
var (
	longRe  = regexp.MustCompile(`(?i)\b[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{12}-[A-Z0-9]{6}\b`)
	shortRe = regexp.MustCompile(`(?i)\b[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}\b`)
)

// Match is a detected code and its byte span within the source blob.
// The span refers to the original blob, not the canonical form, so callers
// can inspect surrounding context.
type Match struct {
	Code  string // canonical upper-case form
	Start int
	End   int
}

// Find returns every short- and long-form code in blob, long form first,
// first-seen order within each shape. Textual duplicates are kept — callers
// deduplicate by normalized identity downstream.
func Find(blob string) []Match {
	var out []Match

	longSpans := longRe.FindAllStringIndex(blob, -1)
	for _, span := range longSpans {
		out = append(out, Match{
			Code:  strings.ToUpper(blob[span[0]:span[1]]),
			Start: span[0],
			End:   span[1],
		})
	}

	for _, span := range shortRe.FindAllStringIndex(blob, -1) {
		if overlapsAny(span, longSpans) {
			continue
		}
		out = append(out, Match{
			Code:  strings.ToUpper(blob[span[0]:span[1]]),
			Start: span[0],
			End:   span[1],
		})
	}

	return out
}

func overlapsAny(span []int, spans [][]int) bool {
	for _, s := range spans {
		if span[0] < s[1] && s[0] < span[1] {
			return true
		}
	}
	return false
}
