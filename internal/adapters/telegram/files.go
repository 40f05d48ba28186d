package telegram

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/corey/redeembot/internal/ports"
)

// digitsRe pulls the numeric part out of a denomination display string
// ("₹1,000" → "1,000"). Export files are named by those digits.
var digitsRe = regexp.MustCompile(`\d+(?:,\d{3})*`)

// exportFile is one generated codes file, grouped by denomination.
type exportFile struct {
	Path         string
	Denomination string
	Count        int
}

// denomFileStem derives the filename stem for a denomination, comma-stripped.
// Denominations without digits (N/A included) group under "unknown".
func denomFileStem(denom string) string {
	m := digitsRe.FindString(denom)
	if m == "" {
		return "unknown"
	}
	return strings.ReplaceAll(m, ",", "")
}

// writeDenominationFiles writes one text file per distinct denomination in
// records, one code per line, into dir. Names follow
// "<digits>_<tag>_<unix>.txt" so exports for different users never collide.
// Output is sorted by denomination for determinism.
func writeDenominationFiles(dir, tag string, records []ports.Record) ([]exportFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	grouped := make(map[string][]string)
	for _, r := range records {
		grouped[r.Denomination] = append(grouped[r.Denomination], r.Code)
	}

	denoms := make([]string, 0, len(grouped))
	for d := range grouped {
		denoms = append(denoms, d)
	}
	sort.Strings(denoms)

	ts := time.Now().Unix()
	var out []exportFile
	used := make(map[string]int)
	for _, denom := range denoms {
		codes := grouped[denom]
		// Distinct denominations can share a stem ("₹1,000" and "₹1000"
		// both yield 1000); suffix later groups so no file overwrites
		// an earlier one.
		stem := denomFileStem(denom)
		used[stem]++
		name := fmt.Sprintf("%s_%s_%d.txt", stem, tag, ts)
		if n := used[stem]; n > 1 {
			name = fmt.Sprintf("%s_%s_%d_%d.txt", stem, tag, ts, n)
		}
		path := filepath.Join(dir, name)

		var b strings.Builder
		for _, c := range codes {
			b.WriteString(c)
			b.WriteByte('\n')
		}
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return nil, fmt.Errorf("write export %s: %w", path, err)
		}
		out = append(out, exportFile{Path: path, Denomination: denom, Count: len(codes)})
	}
	return out, nil
}
