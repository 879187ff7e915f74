package db

import (
	"sort"
	"testing"

	"github.com/Muawiaimtiaz1/nabula-pos/pkg/store"
)

func testCatalog(uid string) []Product {
	return []Product{
		{ID: "p1", UID: uid, Name: "Espresso", Price: 2.5, Quantity: 100},
		{ID: "p2", UID: uid, Name: "Croissant", Price: 3.2, Quantity: 40},
		{ID: "p3", UID: "other-uid", Name: "Bagel", Price: 1.8, Quantity: 12},
	}
}

func TestReplaceProductsEmptyListProtectsCache(t *testing.T) {
	local, _ := setupLocalDB(t)

	if err := local.ReplaceProducts(testCatalog("uid-1")); err != nil {
		t.Fatalf("ReplaceProducts() failed: %v", err)
	}

	if err := local.ReplaceProducts(nil); err != nil {
		t.Fatalf("ReplaceProducts(nil) failed: %v", err)
	}

	products, err := local.ProductsByOwner("uid-1")
	if err != nil {
		t.Fatalf("ProductsByOwner() failed: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("Empty update wiped the cache: got %d products, want 2", len(products))
	}
}

func TestReplaceProductsSwapsWholesale(t *testing.T) {
	local, _ := setupLocalDB(t)

	if err := local.ReplaceProducts(testCatalog("uid-1")); err != nil {
		t.Fatalf("ReplaceProducts() failed: %v", err)
	}

	next := []Product{
		{ID: "p9", UID: "uid-1", Name: "Latte", Price: 4, Quantity: 5},
	}
	if err := local.ReplaceProducts(next); err != nil {
		t.Fatalf("Second ReplaceProducts() failed: %v", err)
	}

	products, err := local.ProductsByOwner("uid-1")
	if err != nil {
		t.Fatalf("ProductsByOwner() failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p9" {
		t.Errorf("Cache not replaced wholesale, got %+v", products)
	}

	// The old owner's rows are gone too, not merged.
	others, err := local.ProductsByOwner("other-uid")
	if err != nil {
		t.Fatalf("ProductsByOwner() failed: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("Stale rows survived replace: %+v", others)
	}
}

func TestProductsByOwnerIndexMatchesScan(t *testing.T) {
	s, err := store.NewBadgerStore("", store.WithInMemory())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	indexed, err := Open(s)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := indexed.ReplaceProducts(testCatalog("uid-1")); err != nil {
		t.Fatalf("ReplaceProducts() failed: %v", err)
	}

	fallback, err := Open(s, WithoutProductIndex())
	if err != nil {
		t.Fatalf("Open(WithoutProductIndex) failed: %v", err)
	}

	for _, uid := range []string{"uid-1", "other-uid", "unknown-uid"} {
		fromIndex, err := indexed.ProductsByOwner(uid)
		if err != nil {
			t.Fatalf("Indexed ProductsByOwner(%s) failed: %v", uid, err)
		}
		fromScan, err := fallback.ProductsByOwner(uid)
		if err != nil {
			t.Fatalf("Scan ProductsByOwner(%s) failed: %v", uid, err)
		}

		sortProducts(fromIndex)
		sortProducts(fromScan)
		if len(fromIndex) != len(fromScan) {
			t.Fatalf("uid %s: index returned %d, scan returned %d", uid, len(fromIndex), len(fromScan))
		}
		for i := range fromIndex {
			if fromIndex[i] != fromScan[i] {
				t.Errorf("uid %s: index %+v != scan %+v", uid, fromIndex[i], fromScan[i])
			}
		}
	}
}

func sortProducts(list []Product) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
