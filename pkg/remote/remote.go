// Package remote defines the document store the sync engine talks to.
// The production backend is an external hosted document database; the
// engine only depends on this narrow surface.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable marks a transport-level failure (offline, network
	// down). Always retryable; the pending order stays in the outbox.
	ErrUnavailable = errors.New("remote store unavailable")

	// ErrPermissionDenied marks a rejected write (security rules, auth).
	// Non-retryable until rules or auth change; logged distinctly.
	ErrPermissionDenied = errors.New("remote store permission denied")
)

// Document is one remote record: a store-assigned id plus its fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is the remote document database capability.
type Store interface {
	// Insert creates a new document and returns its store-assigned id.
	// Identity is assigned remotely; inserting the same payload twice
	// creates two documents.
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)

	// QueryByField returns every document whose field equals value.
	QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error)

	// Subscribe delivers the current matching snapshot and then every
	// subsequent change. The returned cancel function stops delivery.
	Subscribe(collection, field string, value any, onChange func([]Document)) (func(), error)
}
