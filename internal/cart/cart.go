// Package cart holds the shopping cart state container: lines bounded by
// stock, derived totals, an optional delivery time, write-through
// persistence and change notification.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// ASAP is the scheduled-time sentinel for "deliver as soon as possible"
const ASAP = "asap"

// Product carries what a cart line needs to know about a product when it is added
type Product struct {
	ID              string
	Name            string
	ImageURL        string
	Unit            string
	Stock           int
	Price           decimal.Decimal
	OriginalPrice   *decimal.Decimal
	DiscountPercent *int
}

// Item is one product line. Quantity stays within [1, Stock].
type Item struct {
	ProductID       string           `json:"productId"`
	Name            string           `json:"name"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Unit            string           `json:"unit,omitempty"`
	Stock           int              `json:"stock"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice,omitempty"`
	DiscountPercent *int             `json:"discountPercent,omitempty"`
	Quantity        int              `json:"quantity"`
}

// LineTotal is price × quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is a read-only view of the cart handed to consumers
type State struct {
	Items         []Item
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	ItemCount     int // distinct lines
	TotalQuantity int // units across all lines
	ScheduledTime *string
	IsLoading     bool
}

// Storage is the durable key-value slot holding one serialized cart
type Storage interface {
	// Load returns nil data when nothing was persisted yet
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Listener is notified with the new state after every change
type Listener func(State)

// snapshot is the persisted shape
type snapshot struct {
	Items         []Item  `json:"items"`
	ScheduledTime *string `json:"scheduledTime"`
}
