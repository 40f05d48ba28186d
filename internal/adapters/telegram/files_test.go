package telegram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corey/redeembot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenomFileStem(t *testing.T) {
	tests := []struct {
		denom string
		want  string
	}{
		{"₹1000", "1000"},
		{"₹1,000", "1000"},
		{"₹ 2,000.50", "2000"},
		{"N/A", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, denomFileStem(tt.denom), tt.denom)
	}
}

func TestWriteDenominationFiles(t *testing.T) {
	dir := t.TempDir()
	records := []ports.Record{
		{Code: "AAAA-AAAA-AAAA", Denomination: "₹1000", Validity: "N/A"},
		{Code: "BBBB-BBBB-BBBB", Denomination: "₹1000", Validity: "N/A"},
		{Code: "CCCC-CCCC-CCCC", Denomination: "₹2000", Validity: "N/A"},
	}

	files, err := writeDenominationFiles(dir, "42", records)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Sorted by denomination; one code per line.
	assert.Equal(t, "₹1000", files[0].Denomination)
	assert.Equal(t, 2, files[0].Count)
	assert.Equal(t, "₹2000", files[1].Denomination)
	assert.Equal(t, 1, files[1].Count)

	data, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "AAAA-AAAA-AAAA\nBBBB-BBBB-BBBB\n", string(data))

	base := filepath.Base(files[0].Path)
	assert.True(t, strings.HasPrefix(base, "1000_42_"), base)
}

func TestWriteDenominationFilesUnknownGroup(t *testing.T) {
	dir := t.TempDir()
	files, err := writeDenominationFiles(dir, "42", []ports.Record{
		{Code: "AAAA-AAAA-AAAA", Denomination: "N/A", Validity: "N/A"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(files[0].Path), "unknown_42_"))
}

func TestWriteDenominationFilesCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	_, err := writeDenominationFiles(dir, "x", []ports.Record{
		{Code: "AAAA-AAAA-AAAA", Denomination: "₹1000", Validity: "N/A"},
	})
	require.NoError(t, err)
}

func TestWriteDenominationFilesStemCollision(t *testing.T) {
	dir := t.TempDir()
	records := []ports.Record{
		{Code: "AAAA-AAAA-AAAA", Denomination: "₹1,000", Validity: "N/A"},
		{Code: "BBBB-BBBB-BBBB", Denomination: "₹1000", Validity: "N/A"},
	}

	files, err := writeDenominationFiles(dir, "42", records)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Both denominations reduce to the 1000 stem; the groups must still
	// land in separate files with every code intact.
	require.NotEqual(t, files[0].Path, files[1].Path)

	data, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "AAAA-AAAA-AAAA\n", string(data))

	data, err = os.ReadFile(files[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "BBBB-BBBB-BBBB\n", string(data))
}
