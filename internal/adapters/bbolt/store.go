// Package bbolt implements the ports.Storage interface using bbolt (embedded
// B+ tree). The registry bucket maps normalized code identity to the owning
// user id; the stores bucket holds one CSV blob of records per user; the
// users bucket holds the known and banned id sets. Writes are transactional —
// a crash mid-write cannot corrupt previously committed data, and a
// duplicate check and its claim always land in the same transaction.
package bbolt

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/corey/redeembot/internal/domain/code"
	"github.com/corey/redeembot/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket and key names
var (
	bucketRegistry = []byte("registry")
	bucketStores   = []byte("stores")
	bucketUsers    = []byte("users")
	keyKnown       = []byte("known")
	keyBanned      = []byte("banned")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path and ensures
// the top-level buckets exist.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketRegistry, bucketStores, bucketUsers} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ownerKey encodes a user id as the stores-bucket key.
func ownerKey(owner int64) []byte {
	return []byte(strconv.FormatInt(owner, 10))
}

// ownerValue encodes a user id as the registry value (decimal string).
func ownerValue(owner int64) []byte {
	return []byte(strconv.FormatInt(owner, 10))
}

func parseOwner(v []byte) (int64, error) {
	id, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse owner %q: %w", v, err)
	}
	return id, nil
}

// Contains reports whether code's normalized identity is claimed.
func (s *Store) Contains(c string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketRegistry).Get([]byte(code.Normalize(c))) != nil
		return nil
	})
	return found, err
}

// Owner returns the claiming user for code's normalized identity.
func (s *Store) Owner(c string) (int64, bool, error) {
	var (
		owner int64
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRegistry).Get([]byte(code.Normalize(c)))
		if v == nil {
			return nil
		}
		id, err := parseOwner(v)
		if err != nil {
			return err
		}
		owner, found = id, true
		return nil
	})
	return owner, found, err
}

// Claim maps code's normalized identity to owner unconditionally.
func (s *Store) Claim(c string, owner int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRegistry).Put([]byte(code.Normalize(c)), ownerValue(owner))
	})
}

// Release removes code's normalized identity from the registry.
func (s *Store) Release(c string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRegistry).Delete([]byte(code.Normalize(c)))
	})
}

// deleteOwnedKeys removes every registry key whose value is owner, within tx.
func deleteOwnedKeys(tx *bolt.Tx, owner int64) error {
	reg := tx.Bucket(bucketRegistry)
	want := string(ownerValue(owner))
	var doomed [][]byte
	cur := reg.Cursor()
	for k, v := cur.First(); k != nil; k, v = cur.Next() {
		if string(v) == want {
			key := make([]byte, len(k))
			copy(key, k)
			doomed = append(doomed, key)
		}
	}
	for _, k := range doomed {
		if err := reg.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAllForOwner removes every registry key claimed by owner.
func (s *Store) ReleaseAllForOwner(owner int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return deleteOwnedKeys(tx, owner)
	})
}

// ClearRegistry empties the registry.
func (s *Store) ClearRegistry() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketRegistry); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketRegistry)
		return err
	})
}

// CodeCount returns the number of claimed registry keys.
func (s *Store) CodeCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketRegistry).Stats().KeyN
		return nil
	})
	return n, err
}

// Append stores records for owner. Per record, inside one transaction: skip
// if the normalized identity is already claimed, skip if the literal triple
// already sits in owner's store, otherwise append the row and claim the key.
// Claiming as it appends (not after the whole batch) closes the double-claim
// window within a batch.
func (s *Store) Append(owner int64, records []ports.Record) (int, error) {
	appended := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		reg := tx.Bucket(bucketRegistry)
		stores := tx.Bucket(bucketStores)
		key := ownerKey(owner)

		rows := decodeRecords(stores.Get(key))
		existing := make(map[ports.Record]bool, len(rows))
		for _, r := range rows {
			existing[r] = true
		}

		for _, r := range records {
			norm := []byte(code.Normalize(r.Code))
			if reg.Get(norm) != nil {
				continue
			}
			if existing[r] {
				continue
			}
			rows = append(rows, r)
			existing[r] = true
			if err := reg.Put(norm, ownerValue(owner)); err != nil {
				return err
			}
			appended++
		}

		if appended == 0 {
			return nil
		}
		return stores.Put(key, encodeRecords(rows))
	})
	if err != nil {
		return 0, err
	}
	return appended, nil
}

// List returns owner's records in insertion order.
func (s *Store) List(owner int64) ([]ports.Record, error) {
	var rows []ports.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		rows = decodeRecords(tx.Bucket(bucketStores).Get(ownerKey(owner)))
		return nil
	})
	return rows, err
}

// RemoveOne deletes the first record in owner's store whose normalized
// identity matches c, and releases the registry key. First match only.
func (s *Store) RemoveOne(owner int64, c string) (bool, error) {
	norm := code.Normalize(c)
	removed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		stores := tx.Bucket(bucketStores)
		key := ownerKey(owner)
		rows := decodeRecords(stores.Get(key))

		for i, r := range rows {
			if code.Normalize(r.Code) != norm {
				continue
			}
			rows = append(rows[:i], rows[i+1:]...)
			removed = true
			break
		}
		if !removed {
			return nil
		}

		if err := tx.Bucket(bucketRegistry).Delete([]byte(norm)); err != nil {
			return err
		}
		if len(rows) == 0 {
			return stores.Delete(key)
		}
		return stores.Put(key, encodeRecords(rows))
	})
	return removed, err
}

// ClearStore deletes all of owner's records and releases every registry key
// claimed by owner, in one transaction.
func (s *Store) ClearStore(owner int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := deleteOwnedKeys(tx, owner); err != nil {
			return err
		}
		return tx.Bucket(bucketStores).Delete(ownerKey(owner))
	})
}

// Stats returns owner's record count per denomination.
func (s *Store) Stats(owner int64) (map[string]int, error) {
	stats := make(map[string]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, r := range decodeRecords(tx.Bucket(bucketStores).Get(ownerKey(owner))) {
			stats[r.Denomination]++
		}
		return nil
	})
	return stats, err
}

// AllRecords returns every user's records, keyed by owner.
func (s *Store) AllRecords() (map[int64][]ports.Record, error) {
	all := make(map[int64][]ports.Record)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketStores).ForEach(func(k, v []byte) error {
			owner, err := parseOwner(k)
			if err != nil {
				return err
			}
			all[owner] = decodeRecords(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// WipeAll deletes every user store and clears the registry. The known and
// banned sets survive a wipe.
func (s *Store) WipeAll() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketRegistry, bucketStores} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// mutateIDSet loads the id set under key, applies fn, and writes it back.
func (s *Store) mutateIDSet(key []byte, fn func(set map[int64]bool)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		set, err := decodeIDSet(users.Get(key))
		if err != nil {
			return err
		}
		fn(set)
		data, err := encodeIDSet(set)
		if err != nil {
			return err
		}
		return users.Put(key, data)
	})
}

// readIDSet loads the id set under key.
func (s *Store) readIDSet(key []byte) (map[int64]bool, error) {
	var set map[int64]bool
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		set, err = decodeIDSet(tx.Bucket(bucketUsers).Get(key))
		return err
	})
	return set, err
}

// AddKnownUser records id in the known-users set.
func (s *Store) AddKnownUser(id int64) error {
	return s.mutateIDSet(keyKnown, func(set map[int64]bool) { set[id] = true })
}

// KnownUsers returns the known-users set, sorted.
func (s *Store) KnownUsers() ([]int64, error) {
	return s.idSlice(keyKnown)
}

// Ban adds id to the banned set.
func (s *Store) Ban(id int64) error {
	return s.mutateIDSet(keyBanned, func(set map[int64]bool) { set[id] = true })
}

// Unban removes id from the banned set and reports whether it was banned.
func (s *Store) Unban(id int64) (bool, error) {
	was := false
	err := s.mutateIDSet(keyBanned, func(set map[int64]bool) {
		was = set[id]
		delete(set, id)
	})
	return was, err
}

// IsBanned reports whether id is banned.
func (s *Store) IsBanned(id int64) (bool, error) {
	set, err := s.readIDSet(keyBanned)
	if err != nil {
		return false, err
	}
	return set[id], nil
}

// BannedUsers returns the banned set, sorted.
func (s *Store) BannedUsers() ([]int64, error) {
	return s.idSlice(keyBanned)
}

func (s *Store) idSlice(key []byte) ([]int64, error) {
	set, err := s.readIDSet(key)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
