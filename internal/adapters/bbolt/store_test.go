package bbolt

import (
	"testing"

	"github.com/corey/redeembot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func rec(code, denom, valid string) ports.Record {
	return ports.Record{Code: code, Denomination: denom, Validity: valid}
}

func TestClaimAndContains(t *testing.T) {
	s := newTestStore(t)

	found, err := s.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Claim("ABCD-EFGH-1234", 42))

	found, err = s.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.True(t, found)

	owner, ok, err := s.Owner("ABCD-EFGH-1234")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), owner)
}

func TestContainsFoldsLongForm(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Claim("ABCD-EFGH-1234", 42))

	// A long code sharing the first twelve stripped characters is the same key.
	found, err := s.Contains("ABCD-EFGH-1234AAAABBBB-CCCCCC")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Claim("ABCD-EFGH-1234", 42))
	require.NoError(t, s.Release("ABCD-EFGH-1234"))
	require.NoError(t, s.Release("ABCD-EFGH-1234"))

	found, err := s.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAppendAndList(t *testing.T) {
	s := newTestStore(t)

	records := []ports.Record{
		rec("ABCD-EFGH-1234", "₹1000", "Expires on 05 Jan 2026"),
		rec("WXYZ-0000-QQQQ", "₹2000", "N/A"),
	}
	n, err := s.Append(42, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.List(42)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	count, err := s.CodeCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAppendSkipsClaimedKey(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Append(42, []ports.Record{rec("ABCD-EFGH-1234", "₹1000", "N/A")})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Another user submitting the same identity (different rendering) is
	// rejected and the registry keeps the first owner.
	n, err = s.Append(99, []ports.Record{rec("abcd-efgh-1234", "₹2000", "N/A")})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	owner, ok, err := s.Owner("ABCD-EFGH-1234")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), owner)

	got, err := s.List(99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppendSkipsLiteralDuplicateWithinBatch(t *testing.T) {
	s := newTestStore(t)

	r := rec("ABCD-EFGH-1234", "₹1000", "N/A")
	n, err := s.Append(42, []ports.Record{r, r})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppendClaimsPerRecordNotAfterBatch(t *testing.T) {
	s := newTestStore(t)

	// Same identity twice in one batch via short and long renderings: the
	// first record's claim must block the second within the same batch.
	n, err := s.Append(42, []ports.Record{
		rec("ABCD-EFGH-1234", "₹1000", "N/A"),
		rec("ABCD-EFGH-1234AAAABBBB-CCCCCC", "₹2000", "N/A"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRemoveOne(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{
		rec("ABCD-EFGH-1234", "₹1000", "N/A"),
		rec("WXYZ-0000-QQQQ", "₹2000", "N/A"),
	})
	require.NoError(t, err)

	removed, err := s.RemoveOne(42, "abcd-efgh-1234")
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := s.List(42)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "WXYZ-0000-QQQQ", got[0].Code)

	// Key released: the code can be claimed again.
	found, err := s.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemoveOneNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{rec("ABCD-EFGH-1234", "₹1000", "N/A")})
	require.NoError(t, err)

	removed, err := s.RemoveOne(42, "ZZZZ-ZZZZ-ZZZZ")
	require.NoError(t, err)
	assert.False(t, removed)

	// Store and registry unchanged.
	got, err := s.List(42)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	count, err := s.CodeCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClearStoreReleasesOwnedKeysOnly(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{rec("ABCD-EFGH-1234", "₹1000", "N/A")})
	require.NoError(t, err)
	_, err = s.Append(99, []ports.Record{rec("WXYZ-0000-QQQQ", "₹2000", "N/A")})
	require.NoError(t, err)

	require.NoError(t, s.ClearStore(42))

	stats, err := s.Stats(42)
	require.NoError(t, err)
	assert.Empty(t, stats)

	found, err := s.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.False(t, found, "cleared owner's key must be released")

	found, err = s.Contains("WXYZ-0000-QQQQ")
	require.NoError(t, err)
	assert.True(t, found, "other owner's key must survive")
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{
		rec("AAAA-AAAA-AAAA", "₹1000", "N/A"),
		rec("BBBB-BBBB-BBBB", "₹1000", "N/A"),
		rec("CCCC-CCCC-CCCC", "₹2000", "N/A"),
	})
	require.NoError(t, err)

	stats, err := s.Stats(42)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"₹1000": 2, "₹2000": 1}, stats)
}

func TestAllRecords(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{rec("AAAA-AAAA-AAAA", "₹1000", "N/A")})
	require.NoError(t, err)
	_, err = s.Append(99, []ports.Record{rec("BBBB-BBBB-BBBB", "₹2000", "N/A")})
	require.NoError(t, err)

	all, err := s.AllRecords()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AAAA-AAAA-AAAA", all[42][0].Code)
	assert.Equal(t, "BBBB-BBBB-BBBB", all[99][0].Code)
}

func TestWipeAllKeepsUserSets(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{rec("AAAA-AAAA-AAAA", "₹1000", "N/A")})
	require.NoError(t, err)
	require.NoError(t, s.AddKnownUser(42))
	require.NoError(t, s.Ban(7))

	require.NoError(t, s.WipeAll())

	count, err := s.CodeCount()
	require.NoError(t, err)
	assert.Zero(t, count)
	got, err := s.List(42)
	require.NoError(t, err)
	assert.Empty(t, got)

	known, err := s.KnownUsers()
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, known)
	banned, err := s.IsBanned(7)
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestBanUnban(t *testing.T) {
	s := newTestStore(t)

	banned, err := s.IsBanned(7)
	require.NoError(t, err)
	assert.False(t, banned)

	require.NoError(t, s.Ban(7))
	require.NoError(t, s.Ban(7)) // idempotent

	banned, err = s.IsBanned(7)
	require.NoError(t, err)
	assert.True(t, banned)

	was, err := s.Unban(7)
	require.NoError(t, err)
	assert.True(t, was)

	was, err = s.Unban(7)
	require.NoError(t, err)
	assert.False(t, was)
}

func TestKnownUsersSortedAndIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddKnownUser(99))
	require.NoError(t, s.AddKnownUser(42))
	require.NoError(t, s.AddKnownUser(42))

	known, err := s.KnownUsers()
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 99}, known)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.db"

	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.Append(42, []ports.Record{rec("ABCD-EFGH-1234", "₹1,000", "Expires on 05 Jan 2026")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := NewStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.List(42)
	require.NoError(t, err)
	require.Len(t, got, 1)
	// A comma inside the denomination must round-trip intact.
	assert.Equal(t, rec("ABCD-EFGH-1234", "₹1,000", "Expires on 05 Jan 2026"), got[0])

	found, err := s2.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestClearRegistryKeepsStores(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(42, []ports.Record{rec("ABCD-EFGH-1234", "₹1000", "N/A")})
	require.NoError(t, err)

	require.NoError(t, s.ClearRegistry())

	found, err := s.Contains("ABCD-EFGH-1234")
	require.NoError(t, err)
	assert.False(t, found)

	got, err := s.List(42)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
