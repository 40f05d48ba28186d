package code

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// NA is the sentinel display string for an unknown denomination or validity.
// It is stored and serialized literally for format compatibility.
const NA = "N/A"

// windowSize is how far the context extractor looks on each side of a
// matched code, in bytes, clamped to the blob bounds.
const windowSize = 100

// Context extraction patterns, in priority order.
var (
	denomRe    = regexp.MustCompile(`₹\s?\d{1,4}(?:,\d{3})*(?:\.\d{2})?`)
	validityRe = regexp.MustCompile(`Expires on \d{2} \w{3} \d{4}`)
)

// Looser denomination patterns for the live-chat auto-detect path only.
var (
	looseDenomRe = regexp.MustCompile(`₹\s?(\d{4,5})`)
	bareAmountRe = regexp.MustCompile(`\b(1000|2000|3000|4000|5000)\b`)
	shorthandRe  = regexp.MustCompile(`(?i)\b([1-5])k\b`)
)

// Context is what the extractor derived from the text surrounding one code.
type Context struct {
	Denomination string
	Validity     string
}

// ExtractContext inspects the window around the code span [start, end) in
// blob and derives a denomination and validity. Strictly local: an amount
// outside the window is never attributed to this code, even if it is the
// only amount in the message. A value the window doesn't yield is NA.
func ExtractContext(blob string, start, end int) Context {
	snippet := window(blob, start, end)

	ctx := Context{Denomination: NA, Validity: NA}
	if m := denomRe.FindString(snippet); m != "" {
		ctx.Denomination = strings.TrimSpace(m)
	}
	if m := validityRe.FindString(snippet); m != "" {
		ctx.Validity = strings.TrimSpace(m)
	}
	return ctx
}

// DetectDenomination is the looser heuristic used only by the live-chat
// auto-detect path. It accepts a currency-prefixed amount, a bare amount
// from the fixed allowed set, or an "Nk" shorthand, and returns the
// denomination in ₹-prefixed display form. ok is false when the window
// yields nothing, which parks the code for a manual choice.
func DetectDenomination(blob string, start, end int) (denom string, ok bool) {
	snippet := window(blob, start, end)

	if m := looseDenomRe.FindStringSubmatch(snippet); m != nil {
		return "₹" + m[1], true
	}
	if m := bareAmountRe.FindStringSubmatch(snippet); m != nil {
		return "₹" + m[1], true
	}
	if m := shorthandRe.FindStringSubmatch(snippet); m != nil {
		return "₹" + m[1] + "000", true
	}
	return "", false
}

// window returns the blob slice covering windowSize bytes on each side of
// [start, end), clamped to the blob and backed off to rune boundaries so a
// multi-byte symbol at the edge is never split.
func window(blob string, start, end int) string {
	lo := start - windowSize
	if lo < 0 {
		lo = 0
	}
	hi := end + windowSize
	if hi > len(blob) {
		hi = len(blob)
	}
	for lo > 0 && !utf8.RuneStart(blob[lo]) {
		lo--
	}
	for hi < len(blob) && !utf8.RuneStart(blob[hi]) {
		hi++
	}
	return blob[lo:hi]
}
