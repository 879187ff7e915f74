package db

import (
	"log"

	"github.com/Muawiaimtiaz1/nabula-pos/pkg/store"
)

// PutOrder upserts an order by its primary key. A zero-value Synced field
// keeps the order in the outbox; a synced order (reconciliation download)
// carries no index row. Re-putting an identical order is a no-op in effect.
func (db *LocalDB) PutOrder(o *Order) error {
	if err := db.check(); err != nil {
		return err
	}

	raw, err := encodeOrder(o)
	if err != nil {
		return err
	}

	key := orderKey(o.ID)
	idxKey := unsyncedIdxKey(o.ID)
	return db.store.Update(func(tx store.Tx) error {
		if err := tx.Set(key, raw); err != nil {
			return err
		}
		if o.Synced {
			return tx.Delete(idxKey)
		}
		return tx.Set(idxKey, key)
	})
}

// Orders returns every stored order; owner != "" filters by exact User
// match. The full set is returned, callers sort for display.
func (db *LocalDB) Orders(owner string) ([]Order, error) {
	if err := db.check(); err != nil {
		return nil, err
	}

	var orders []Order
	err := db.store.View(func(tx store.Tx) error {
		prefix := []byte(orderPrefix)
		it := tx.NewIterator(store.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			_, raw, err := it.Item()
			if err != nil {
				return err
			}
			o, err := decodeOrder(raw)
			if err != nil {
				return err
			}
			if owner != "" && o.User != owner {
				continue
			}
			orders = append(orders, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UnsyncedOrders returns the outbox: every order with Synced == false,
// resolved through the unsynced index.
func (db *LocalDB) UnsyncedOrders() ([]Order, error) {
	if err := db.check(); err != nil {
		return nil, err
	}

	var pending []Order
	err := db.store.View(func(tx store.Tx) error {
		prefix := []byte(unsyncedIdxPrefix)
		it := tx.NewIterator(store.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			_, pk, err := it.Item()
			if err != nil {
				return err
			}
			raw, err := tx.Get(pk)
			if err == store.ErrKeyNotFound {
				// Row vanished under the index (concurrent clear); skip.
				continue
			}
			if err != nil {
				return err
			}
			o, err := decodeOrder(raw)
			if err != nil {
				return err
			}
			pending = append(pending, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// MarkSynced flips an order's Synced flag to true and drops its index row,
// all in one transaction. An absent id returns (false, nil): the order may
// have been cleared by a concurrent reconciliation, which is a signal, not
// an error. Marking twice leaves state identical to marking once.
func (db *LocalDB) MarkSynced(id int64) (bool, error) {
	if err := db.check(); err != nil {
		return false, err
	}

	found := false
	err := db.store.Update(func(tx store.Tx) error {
		raw, err := tx.Get(orderKey(id))
		if err == store.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		o, err := decodeOrder(raw)
		if err != nil {
			return err
		}
		found = true

		if !o.Synced {
			o.Synced = true
			updated, err := encodeOrder(&o)
			if err != nil {
				return err
			}
			if err := tx.Set(orderKey(id), updated); err != nil {
				return err
			}
		}
		return tx.Delete(unsyncedIdxKey(id))
	})
	if err != nil {
		return false, err
	}
	if !found {
		log.Printf("[Local] order %d not found for mark-synced", id)
	}
	return found, nil
}

// ClearOrders deletes every order row and index row. Only the full
// reconciliation path calls this, never the upload-only sync.
func (db *LocalDB) ClearOrders() error {
	if err := db.check(); err != nil {
		return err
	}

	return db.store.Update(func(tx store.Tx) error {
		for _, p := range []string{orderPrefix, unsyncedIdxPrefix} {
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
		return nil
	})
}

func collectKeys(tx store.Tx, prefix []byte) ([][]byte, error) {
	it := tx.NewIterator(store.IteratorOptions{Prefix: prefix})
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		k, _, err := it.Item()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
