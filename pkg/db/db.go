package db

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Muawiaimtiaz1/nabula-pos/pkg/store"
)

var (
	// ErrStoreNotReady is returned when the local store is used before
	// Open completed or after Close. Callers must await readiness.
	ErrStoreNotReady = errors.New("local store not ready")
)

const (
	sysKeySchemaVersion = "sys/schema_version"
	schemaVersion       = "1"
)

// Key layout. Index rows are written in the same transaction as their data
// row and hold the primary key as value (scan resolves index -> row).
const (
	orderPrefix        = "order/"
	unsyncedIdxPrefix  = "idx/unsynced/"
	productPrefix      = "product/"
	productOwnerPrefix = "idx/powner/"
)

// LocalDB owns the on-device order and product records. The sync engine
// reads and writes through it; the UI layer never touches it directly.
// ready is atomic: Close may race with the engine's trigger goroutines.
type LocalDB struct {
	store        store.Store
	ready        atomic.Bool
	productIndex bool
}

// Option customizes an opened LocalDB.
type Option func(*LocalDB)

// WithoutProductIndex forces the full-scan read path for products. The
// result set must match the indexed path; tests compare the two.
func WithoutProductIndex() Option {
	return func(db *LocalDB) {
		db.productIndex = false
	}
}

// Open prepares the local database on top of s. The returned LocalDB is
// ready for use; every operation on a nil or closed LocalDB fails with
// ErrStoreNotReady.
func Open(s store.Store, opts ...Option) (*LocalDB, error) {
	var stored string
	err := s.View(func(tx store.Tx) error {
		val, err := tx.Get([]byte(sysKeySchemaVersion))
		if err == nil {
			stored = string(val)
			return nil
		}
		return err
	})
	if err != nil && err != store.ErrKeyNotFound {
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	if stored == "" {
		if err := s.Update(func(tx store.Tx) error {
			return tx.Set([]byte(sysKeySchemaVersion), []byte(schemaVersion))
		}); err != nil {
			return nil, fmt.Errorf("store schema version: %w", err)
		}
	} else if stored != schemaVersion {
		return nil, fmt.Errorf("schema version mismatch: stored %s, want %s", stored, schemaVersion)
	}

	db := &LocalDB{
		store:        s,
		productIndex: true,
	}
	for _, opt := range opts {
		opt(db)
	}
	db.ready.Store(true)
	return db, nil
}

// Close detaches the LocalDB from its store. The underlying store is owned
// by the caller and stays open.
func (db *LocalDB) Close() {
	db.ready.Store(false)
}

func (db *LocalDB) check() error {
	if db == nil || !db.ready.Load() {
		return ErrStoreNotReady
	}
	return nil
}

func orderKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%016x", orderPrefix, uint64(id)))
}

func unsyncedIdxKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%016x", unsyncedIdxPrefix, uint64(id)))
}

func productKey(id string) []byte {
	return []byte(productPrefix + id)
}

func productOwnerIdxKey(uid, id string) []byte {
	return []byte(productOwnerPrefix + uid + "/" + id)
}
