package remote

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and the demo. It mimics
// the hosted backend: auto-assigned document ids, snapshot push on
// subscribe and after every insert, and injectable failures.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]Document
	subs        map[int]*memorySub
	nextSub     int
	online      bool
	insertErrs  []error
}

type memorySub struct {
	collection string
	field      string
	value      any
	onChange   func([]Document)
}

// NewMemoryStore creates an empty, online MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Document),
		subs:        make(map[int]*memorySub),
		online:      true,
	}
}

// SetOnline toggles simulated connectivity. While offline every call
// fails with ErrUnavailable.
func (m *MemoryStore) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}

// FailNextInsert queues one injected error; the next Insert returns it
// instead of writing.
func (m *MemoryStore) FailNextInsert(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertErrs = append(m.insertErrs, err)
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	if !m.online {
		m.mu.Unlock()
		return "", ErrUnavailable
	}
	if len(m.insertErrs) > 0 {
		err := m.insertErrs[0]
		m.insertErrs = m.insertErrs[1:]
		m.mu.Unlock()
		return "", err
	}

	doc := Document{
		ID:     uuid.NewString(),
		Fields: copyFields(fields),
	}
	m.collections[collection] = append(m.collections[collection], doc)
	notify := m.matchingSubs(collection)
	m.mu.Unlock()

	for _, sub := range notify {
		sub.onChange(m.snapshot(sub))
	}
	return doc.ID, nil
}

func (m *MemoryStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.online {
		return nil, ErrUnavailable
	}
	return m.queryLocked(collection, field, value), nil
}

func (m *MemoryStore) Subscribe(collection, field string, value any, onChange func([]Document)) (func(), error) {
	m.mu.Lock()
	if !m.online {
		m.mu.Unlock()
		return nil, ErrUnavailable
	}

	id := m.nextSub
	m.nextSub++
	sub := &memorySub{
		collection: collection,
		field:      field,
		value:      value,
		onChange:   onChange,
	}
	m.subs[id] = sub
	initial := m.queryLocked(collection, field, value)
	m.mu.Unlock()

	// Initial snapshot, like the hosted backend's first listener callback.
	onChange(initial)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
	return cancel, nil
}

// Documents returns a copy of a collection, for assertions and the demo.
func (m *MemoryStore) Documents(collection string) []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	out := make([]Document, len(docs))
	copy(out, docs)
	return out
}

func (m *MemoryStore) queryLocked(collection, field string, value any) []Document {
	var out []Document
	for _, doc := range m.collections[collection] {
		if doc.Fields[field] == value {
			out = append(out, doc)
		}
	}
	return out
}

func (m *MemoryStore) matchingSubs(collection string) []*memorySub {
	var out []*memorySub
	for _, sub := range m.subs {
		if sub.collection == collection {
			out = append(out, sub)
		}
	}
	return out
}

func (m *MemoryStore) snapshot(sub *memorySub) []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryLocked(sub.collection, sub.field, sub.value)
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
