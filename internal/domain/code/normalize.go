package code

import "strings"

// longKeyLen is how much of a hyphen-stripped long code survives
// normalization. A long code and a short code sharing the same first twelve
// characters collide on purpose: both render the same underlying voucher,
// and every deployed variant of the source system folds them identically.
const longKeyLen = 12

// IsLongForm reports whether code has the long shape: four hyphen groups of
// exactly 4, 4, 12 and 6 characters.
func IsLongForm(code string) bool {
	parts := strings.Split(code, "-")
	return len(parts) == 4 &&
		len(parts[0]) == 4 && len(parts[1]) == 4 &&
		len(parts[2]) == 12 && len(parts[3]) == 6
}

// Normalize derives the deduplication identity of a code: upper-cased,
// hyphens stripped, and for long-form codes truncated to the first twelve
// characters. Pure and deterministic — two textual renderings of the same
// voucher always normalize identically. Idempotent: normalizing an already
// normalized key is a no-op.
func Normalize(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	stripped := strings.ReplaceAll(c, "-", "")
	if IsLongForm(c) {
		return stripped[:longKeyLen]
	}
	return stripped
}
