package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codesOf(ms []Match) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Code)
	}
	return out
}

func TestFindShortCodes(t *testing.T) {
	blob := "Here you go: ABCD-EFGH-1234 and also WXYZ-0000-QQQQ thanks"
	ms := Find(blob)
	assert.Equal(t, []string{"ABCD-EFGH-1234", "WXYZ-0000-QQQQ"}, codesOf(ms))
}

func TestFindLongCode(t *testing.T) {
	ms := Find("code AAAA-BBBB-CCCCCCCCCCCC-DDDDDD end")
	require.Len(t, ms, 1)
	assert.Equal(t, "AAAA-BBBB-CCCCCCCCCCCC-DDDDDD", ms[0].Code)
}

func TestFindCaseInsensitive(t *testing.T) {
	ms := Find("abcd-efgh-1234")
	require.Len(t, ms, 1)
	// Canonical form is upper-case.
	assert.Equal(t, "ABCD-EFGH-1234", ms[0].Code)
}

func TestFindLongNotAlsoShort(t *testing.T) {
	// A long code must not additionally be reported as a short code.
	ms := Find("AAAA-BBBB-CCCCCCCCCCCC-DDDDDD")
	require.Len(t, ms, 1)
	assert.True(t, IsLongForm(ms[0].Code))
}

func TestFindBothShapes(t *testing.T) {
	blob := "short ABCD-EFGH-1234 long AAAA-BBBB-CCCCCCCCCCCC-DDDDDD"
	ms := Find(blob)
	require.Len(t, ms, 2)
	// Long form is reported first, then short, first-seen within each shape.
	assert.Equal(t, []string{"AAAA-BBBB-CCCCCCCCCCCC-DDDDDD", "ABCD-EFGH-1234"}, codesOf(ms))
}

func TestFindSpans(t *testing.T) {
	blob := "xx ABCD-EFGH-1234 yy"
	ms := Find(blob)
	require.Len(t, ms, 1)
	assert.Equal(t, "ABCD-EFGH-1234", blob[ms[0].Start:ms[0].End])
}

func TestFindRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"too few groups", "ABCD-EFGH"},
		{"group too long", "ABCDE-FGHI-1234"},
		{"embedded in word", "xABCD-EFGH-1234"},
		{"wrong long tail", "AAAA-BBBB-CCCCCCCCCCCC-DDD"},
		{"no codes at all", "nothing to see here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Find(tt.blob))
		})
	}
}

func TestFindKeepsTextualDuplicates(t *testing.T) {
	// Dedup happens downstream by normalized identity, not in the matcher.
	ms := Find("ABCD-EFGH-1234 ABCD-EFGH-1234")
	assert.Len(t, ms, 2)
}
