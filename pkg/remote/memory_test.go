package remote

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreInsertAndQuery(t *testing.T) {
	rs := NewMemoryStore()
	ctx := context.Background()

	id, err := rs.Insert(ctx, "orders", map[string]any{"user": "a@x.com", "total": 5.0})
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if id == "" {
		t.Fatal("Insert() returned empty document id")
	}
	if _, err := rs.Insert(ctx, "orders", map[string]any{"user": "b@x.com", "total": 7.0}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	docs, err := rs.QueryByField(ctx, "orders", "user", "a@x.com")
	if err != nil {
		t.Fatalf("QueryByField() failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Got %d documents for a@x.com, want 1", len(docs))
	}
	if docs[0].ID != id {
		t.Errorf("Got document id %s, want %s", docs[0].ID, id)
	}
	if docs[0].Fields["total"] != 5.0 {
		t.Errorf("Got total %v, want 5", docs[0].Fields["total"])
	}
}

func TestMemoryStoreOffline(t *testing.T) {
	rs := NewMemoryStore()
	rs.SetOnline(false)
	ctx := context.Background()

	if _, err := rs.Insert(ctx, "orders", map[string]any{"user": "a@x.com"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Insert() while offline: got %v, want ErrUnavailable", err)
	}
	if _, err := rs.QueryByField(ctx, "orders", "user", "a@x.com"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("QueryByField() while offline: got %v, want ErrUnavailable", err)
	}
	if _, err := rs.Subscribe("products", "uid", "u1", func([]Document) {}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Subscribe() while offline: got %v, want ErrUnavailable", err)
	}

	rs.SetOnline(true)
	if _, err := rs.Insert(ctx, "orders", map[string]any{"user": "a@x.com"}); err != nil {
		t.Errorf("Insert() after going online failed: %v", err)
	}
}

func TestMemoryStoreFailNextInsert(t *testing.T) {
	rs := NewMemoryStore()
	ctx := context.Background()

	injected := errors.New("boom")
	rs.FailNextInsert(injected)

	if _, err := rs.Insert(ctx, "orders", map[string]any{"user": "a@x.com"}); !errors.Is(err, injected) {
		t.Fatalf("Got %v, want injected error", err)
	}
	if len(rs.Documents("orders")) != 0 {
		t.Error("Failed insert still wrote a document")
	}

	// The injected error is one-shot.
	if _, err := rs.Insert(ctx, "orders", map[string]any{"user": "a@x.com"}); err != nil {
		t.Fatalf("Insert() after injected failure: %v", err)
	}
	if len(rs.Documents("orders")) != 1 {
		t.Errorf("Got %d documents, want 1", len(rs.Documents("orders")))
	}
}

func TestMemoryStoreSubscribe(t *testing.T) {
	rs := NewMemoryStore()
	ctx := context.Background()

	if _, err := rs.Insert(ctx, "products", map[string]any{"uid": "u1", "name": "Espresso"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	var snapshots [][]Document
	cancel, err := rs.Subscribe("products", "uid", "u1", func(docs []Document) {
		snapshots = append(snapshots, docs)
	})
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	if len(snapshots) != 1 {
		t.Fatalf("Got %d snapshots after subscribe, want initial 1", len(snapshots))
	}
	if len(snapshots[0]) != 1 {
		t.Fatalf("Initial snapshot has %d documents, want 1", len(snapshots[0]))
	}

	if _, err := rs.Insert(ctx, "products", map[string]any{"uid": "u1", "name": "Latte"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("Got %d snapshots after insert, want 2", len(snapshots))
	}
	if len(snapshots[1]) != 2 {
		t.Errorf("Second snapshot has %d documents, want 2", len(snapshots[1]))
	}

	// Documents for other owners do not match the filter.
	if _, err := rs.Insert(ctx, "products", map[string]any{"uid": "u2", "name": "Bagel"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if len(snapshots[len(snapshots)-1]) != 2 {
		t.Errorf("Snapshot includes another owner's document")
	}

	cancel()
	before := len(snapshots)
	if _, err := rs.Insert(ctx, "products", map[string]any{"uid": "u1", "name": "Mocha"}); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if len(snapshots) != before {
		t.Error("Cancelled subscription still received a snapshot")
	}
}
