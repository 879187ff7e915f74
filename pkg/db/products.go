package db

import (
	"log"

	"github.com/Muawiaimtiaz1/nabula-pos/pkg/store"
)

// ReplaceProducts atomically swaps the cached catalog for list. An empty
// list is skipped entirely: a transient empty remote read must never wipe
// a non-empty local cache while the device is offline.
func (db *LocalDB) ReplaceProducts(list []Product) error {
	if err := db.check(); err != nil {
		return err
	}

	if len(list) == 0 {
		log.Printf("[Local] skipping product replace: empty list protects offline cache")
		return nil
	}

	return db.store.Update(func(tx store.Tx) error {
		for _, p := range []string{productPrefix, productOwnerPrefix} {
			keys, err := collectKeys(tx, []byte(p))
			if err != nil {
				return err
			}
			for _, k := range keys {
				if err := tx.Delete(k); err != nil {
					return err
				}
			}
		}

		for i := range list {
			p := &list[i]
			raw, err := encodeProduct(p)
			if err != nil {
				return err
			}
			if err := tx.Set(productKey(p.ID), raw); err != nil {
				return err
			}
			if err := tx.Set(productOwnerIdxKey(p.UID, p.ID), productKey(p.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ProductsByOwner returns the cached products for one owner uid. The
// indexed path and the full-scan fallback must produce the same set.
func (db *LocalDB) ProductsByOwner(uid string) ([]Product, error) {
	if err := db.check(); err != nil {
		return nil, err
	}
	if db.productIndex {
		return db.productsByOwnerIndexed(uid)
	}
	return db.productsByOwnerScan(uid)
}

func (db *LocalDB) productsByOwnerIndexed(uid string) ([]Product, error) {
	var products []Product
	err := db.store.View(func(tx store.Tx) error {
		prefix := []byte(productOwnerPrefix + uid + "/")
		it := tx.NewIterator(store.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			_, pk, err := it.Item()
			if err != nil {
				return err
			}
			raw, err := tx.Get(pk)
			if err == store.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			p, err := decodeProduct(raw)
			if err != nil {
				return err
			}
			products = append(products, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (db *LocalDB) productsByOwnerScan(uid string) ([]Product, error) {
	var products []Product
	err := db.store.View(func(tx store.Tx) error {
		prefix := []byte(productPrefix)
		it := tx.NewIterator(store.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			_, raw, err := it.Item()
			if err != nil {
				return err
			}
			p, err := decodeProduct(raw)
			if err != nil {
				return err
			}
			if p.UID != uid {
				continue
			}
			products = append(products, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}
