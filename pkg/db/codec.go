package db

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeOrder(o *Order) ([]byte, error) {
	raw, err := msgpack.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode order %d: %w", o.ID, err)
	}
	return raw, nil
}

func decodeOrder(raw []byte) (Order, error) {
	var o Order
	if err := msgpack.Unmarshal(raw, &o); err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}
	return o, nil
}

func encodeProduct(p *Product) ([]byte, error) {
	raw, err := msgpack.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode product %s: %w", p.ID, err)
	}
	return raw, nil
}

func decodeProduct(raw []byte) (Product, error) {
	var p Product
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}
