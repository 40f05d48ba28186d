// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// Record is one stored (code, denomination, validity) row belonging to a user.
// Denomination and Validity are opaque display strings; "N/A" marks an
// unknown value and must survive serialization unchanged.
type Record struct {
	Code         string
	Denomination string
	Validity     string
}

// Storage persists the global code registry, the per-user record stores, and
// the known/banned user sets. All mutating operations must commit durably
// before returning: a crash mid-write must not leave a read observing a
// partial snapshot. Registry keys are normalized code identities; callers
// pass display-form codes and the adapter derives the key.
//
// Registry invariant: a key maps to at most one owner, and every key maps to
// the owner whose store holds the matching record. Append enforces this by
// checking and claiming each key inside the same transaction that writes the
// record, so two records for one key can never land in different stores.
type Storage interface {
	// Contains reports whether the normalized identity of code is claimed.
	Contains(code string) (bool, error)

	// Owner returns the claiming user for code's normalized identity.
	// The bool is false when the key is unclaimed.
	Owner(code string) (int64, bool, error)

	// Claim maps code's normalized identity to owner unconditionally.
	// Callers wanting first-write-wins must check Contains first; Append
	// does the combined check-and-claim and is what the pipeline uses.
	Claim(code string, owner int64) error

	// Release removes code's normalized identity from the registry.
	// No-op if the key is absent.
	Release(code string) error

	// ReleaseAllForOwner removes every registry key claimed by owner.
	ReleaseAllForOwner(owner int64) error

	// ClearRegistry empties the registry (administrative wipe).
	ClearRegistry() error

	// CodeCount returns the number of claimed registry keys.
	CodeCount() (int, error)

	// Append stores records for owner, skipping any whose normalized
	// identity is already claimed and any literal duplicate of a row
	// already in owner's store. Each accepted record claims its key in
	// the same transaction. Returns how many records were newly stored.
	Append(owner int64, records []Record) (int, error)

	// List returns owner's records in insertion order.
	// Returns nil, nil for a user with no store.
	List(owner int64) ([]Record, error)

	// RemoveOne deletes the first record in owner's store whose normalized
	// identity matches code, releasing the registry key. At most one record
	// is removed per call. Returns whether a removal occurred.
	RemoveOne(owner int64, code string) (bool, error)

	// ClearStore deletes all of owner's records and releases every
	// registry key claimed by owner.
	ClearStore(owner int64) error

	// Stats returns owner's record count per denomination.
	Stats(owner int64) (map[string]int, error)

	// AllRecords returns every user's records, keyed by owner.
	AllRecords() (map[int64][]Record, error)

	// WipeAll deletes every user store and clears the registry.
	// Known/banned user sets are unaffected.
	WipeAll() error

	// AddKnownUser records a user id in the known-users set. Idempotent.
	AddKnownUser(id int64) error

	// KnownUsers returns the known-users set.
	KnownUsers() ([]int64, error)

	// Ban adds id to the banned set. Idempotent.
	Ban(id int64) error

	// Unban removes id from the banned set.
	// Returns whether id was banned.
	Unban(id int64) (bool, error)

	// IsBanned reports whether id is banned.
	IsBanned(id int64) (bool, error)

	// BannedUsers returns the banned set.
	BannedUsers() ([]int64, error)

	// Close releases the underlying database.
	Close() error
}
