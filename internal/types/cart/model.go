package cart

import (
	"github.com/antonminaichev/mediexpress/internal/types/order"
)

// Cart is what gets persisted per user. Items carry a product snapshot taken
// when the product was added.
type Cart struct {
	Items []order.Item `json:"items"`
}

func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}
