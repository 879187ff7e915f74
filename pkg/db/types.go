package db

import (
	"time"
)

// LineItem is one cart line frozen into an order at placement time.
type LineItem struct {
	ID    string  `msgpack:"id"`
	Name  string  `msgpack:"name"`
	Price float64 `msgpack:"price"`
	Qty   int     `msgpack:"qty"`
}

// Order is a locally persisted sale. Synced is device-local bookkeeping:
// false until the remote store durably accepted the order, then true
// exactly once. It is never part of the remote payload.
type Order struct {
	ID            int64      `msgpack:"id"`
	Date          time.Time  `msgpack:"date"`
	Items         []LineItem `msgpack:"items"`
	Subtotal      float64    `msgpack:"subtotal"`
	Total         float64    `msgpack:"total"`
	PaymentMethod string     `msgpack:"paymentMethod"`
	User          string     `msgpack:"user"`
	CustomerName  string     `msgpack:"customerName"`
	Synced        bool       `msgpack:"synced"`
}

// Pending reports whether the order still waits in the outbox.
func (o *Order) Pending() bool {
	return !o.Synced
}

// Product is a read-mostly cache row of the remote catalog.
type Product struct {
	ID       string  `msgpack:"id"`
	UID      string  `msgpack:"uid"`
	Name     string  `msgpack:"name"`
	Price    float64 `msgpack:"price"`
	Quantity int     `msgpack:"quantity"`
}
