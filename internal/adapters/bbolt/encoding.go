// Record-blob and user-set encoding for the bbolt store.
//
// Per-user stores are serialized as CSV-style text:
//
//	CODE,DENOMINATION,VALIDITY
//	ABCD-EFGH-1234,₹1000,Expires on 05 Jan 2026
//
// The header line matches the export format the original deployment used, so
// a blob can be dumped to a file and read back as-is. A denomination may
// itself contain a comma (₹1,000) — rows are decoded as first field = code,
// last field = validity, everything between rejoined as the denomination.
// Decoding tolerates a missing header: the first line is skipped only when
// it equals the header literal.
//
// User sets (known, banned) are JSON arrays of ids, sorted for deterministic
// output.
package bbolt

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/corey/redeembot/internal/ports"
)

// recordHeader is the literal header row of a serialized user store.
const recordHeader = "CODE,DENOMINATION,VALIDITY"

// encodeRecords serializes records with the header row.
func encodeRecords(records []ports.Record) []byte {
	var b strings.Builder
	b.WriteString(recordHeader)
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(r.Code)
		b.WriteByte(',')
		b.WriteString(r.Denomination)
		b.WriteByte(',')
		b.WriteString(r.Validity)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// decodeRecords parses a serialized user store. Lines that don't split into
// at least three fields are skipped rather than failing the whole blob.
func decodeRecords(data []byte) []ports.Record {
	lines := strings.Split(string(data), "\n")
	var out []ports.Record
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if i == 0 && line == recordHeader {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}
		out = append(out, ports.Record{
			Code:         parts[0],
			Denomination: strings.Join(parts[1:len(parts)-1], ","),
			Validity:     parts[len(parts)-1],
		})
	}
	return out
}

// encodeIDSet serializes a user-id set as a sorted JSON array.
func encodeIDSet(set map[int64]bool) ([]byte, error) {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return json.Marshal(ids)
}

// decodeIDSet parses a JSON id array into a set. nil data is an empty set.
func decodeIDSet(data []byte) (map[int64]bool, error) {
	set := make(map[int64]bool)
	if data == nil {
		return set, nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
