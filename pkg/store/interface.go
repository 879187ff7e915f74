package store

import (
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
)

// Store is the durable KV layer the POS cache sits on (BadgerDB in
// production, in-memory Badger in tests). One Store instance backs one
// device-local database.
type Store interface {
	// Close closes the store.
	Close() error

	// View runs a read-only transaction.
	View(fn func(Tx) error) error

	// Update runs a read-write transaction. Writes inside one Update call
	// commit atomically; index rows written next to their data row can
	// never be observed half-applied.
	Update(fn func(Tx) error) error
}

// Tx is a single transaction.
type Tx interface {
	// Set stores value under key.
	Set(key, value []byte) error

	// Get returns the value for key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// NewIterator creates an iterator with the given options.
	NewIterator(opts IteratorOptions) Iterator
}

// IteratorOptions configures an iterator.
type IteratorOptions struct {
	Prefix []byte
}

// Iterator walks keys in the store.
type Iterator interface {
	// Rewind moves the iterator to the start of its range.
	Rewind()

	// ValidForPrefix reports whether the iterator points at a valid key
	// with the given prefix.
	ValidForPrefix(prefix []byte) bool

	// Next advances the iterator.
	Next()

	// Item returns the current key and value.
	Item() (key, value []byte, err error)

	// Close releases the iterator.
	Close()
}
