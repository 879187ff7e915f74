package db

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// RemoteFields builds the remote document payload for an order. The Synced
// flag is local bookkeeping and is stripped; everything else is carried
// verbatim, with the date normalized to RFC 3339.
func (o *Order) RemoteFields() map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"id":    it.ID,
			"name":  it.Name,
			"price": it.Price,
			"qty":   it.Qty,
		})
	}
	return map[string]any{
		"id":            o.ID,
		"date":          o.Date.UTC().Format(time.RFC3339Nano),
		"items":         items,
		"subtotal":      o.Subtotal,
		"total":         o.Total,
		"paymentMethod": o.PaymentMethod,
		"user":          o.User,
		"customerName":  o.CustomerName,
	}
}

// OrderFromFields rebuilds an order from a remote document's fields. Remote
// documents carry no Synced flag; the caller decides the local value.
// Numeric fields tolerate the float64 shape JSON decoding produces.
func OrderFromFields(fields map[string]any) (Order, error) {
	id, ok := int64Like(fields["id"])
	if !ok {
		return Order{}, fmt.Errorf("order document missing numeric id, got %T", fields["id"])
	}

	o := Order{
		ID:            id,
		Subtotal:      floatLike(fields["subtotal"]),
		Total:         floatLike(fields["total"]),
		PaymentMethod: stringLike(fields["paymentMethod"]),
		User:          stringLike(fields["user"]),
		CustomerName:  stringLike(fields["customerName"]),
	}

	if raw := stringLike(fields["date"]); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Order{}, fmt.Errorf("order %d: bad date %q: %w", id, raw, err)
		}
		o.Date = ts
	}

	if rawItems, ok := fields["items"].([]map[string]any); ok {
		for _, entry := range rawItems {
			o.Items = append(o.Items, lineItemFromFields(entry))
		}
	} else if rawItems, ok := fields["items"].([]any); ok {
		for _, raw := range rawItems {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			o.Items = append(o.Items, lineItemFromFields(entry))
		}
	}

	return o, nil
}

func lineItemFromFields(fields map[string]any) LineItem {
	qty, _ := int64Like(fields["qty"])
	return LineItem{
		ID:    stringLike(fields["id"]),
		Name:  stringLike(fields["name"]),
		Price: floatLike(fields["price"]),
		Qty:   int(qty),
	}
}

// ProductFromFields rebuilds a catalog row from a remote document. The
// document id becomes the product id, mirroring the remote store's
// assignment of identity.
func ProductFromFields(docID string, fields map[string]any) Product {
	qty, _ := int64Like(fields["quantity"])
	return Product{
		ID:       docID,
		UID:      stringLike(fields["uid"]),
		Name:     stringLike(fields["name"]),
		Price:    floatLike(fields["price"]),
		Quantity: int(qty),
	}
}

func stringLike(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func int64Like(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int64(val), true
	case string:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func floatLike(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
