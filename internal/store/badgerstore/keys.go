// internal/store/badgerstore/keys.go
package badgerstore

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/models"
)

const (
	prefixApplication = "app/"
	prefixInterview   = "iv/"
	prefixAssignment  = "asg/"
	prefixProject     = "project/"
	prefixMember      = "member/"
)

func applicationKey(id uuid.UUID) []byte   { return []byte(prefixApplication + id.String()) }
func interviewKey(id uuid.UUID) []byte     { return []byte(prefixInterview + id.String()) }
func assignmentKey(id uuid.UUID) []byte    { return []byte(prefixAssignment + id.String()) }
func projectKey(id uuid.UUID) []byte       { return []byte(prefixProject + id.String()) }
func memberKey(id uuid.UUID) []byte        { return []byte(prefixMember + id.String()) }
func currentAppKey(id uuid.UUID) []byte    { return []byte("app_current/" + id.String()) }
func pendingIVKey(id uuid.UUID) []byte     { return []byte("iv_pending/" + id.String()) }
func latestAsgKey(id uuid.UUID) []byte     { return []byte("asg_latest/" + id.String()) }
func activeStudentKey(id uuid.UUID) []byte { return []byte("asg_active/student/" + id.String()) }
func activeFacultyKey(id uuid.UUID) []byte { return []byte("asg_active/faculty/" + id.String()) }
func activeTitleKey(key string) []byte     { return []byte("asg_active/title/" + key) }

func getJSON(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getID(txn *badger.Txn, key []byte) (uuid.UUID, error) {
	var id uuid.UUID
	item, err := txn.Get(key)
	if err != nil {
		return id, err
	}
	err = item.Value(func(val []byte) error {
		parsed, err := uuid.FromBytes(val)
		id = parsed
		return err
	})
	return id, err
}

func setID(txn *badger.Txn, key []byte, id uuid.UUID) error {
	return txn.Set(key, id[:])
}

// getIDs reads an index list; a missing key is an empty list.
func getIDs(txn *badger.Txn, key []byte) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := getJSON(txn, key, &ids)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return ids, err
}

func addID(txn *badger.Txn, key []byte, id uuid.UUID) error {
	ids, err := getIDs(txn, key)
	if err != nil {
		return err
	}
	return setJSON(txn, key, append(ids, id))
}

func removeID(txn *badger.Txn, key []byte, id uuid.UUID) error {
	ids, err := getIDs(txn, key)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		return txn.Delete(key)
	}
	return setJSON(txn, key, kept)
}

func touch(b *models.BaseModel) {
	now := time.Now().UTC()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func scan(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
