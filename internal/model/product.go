package model

import "github.com/shopspring/decimal"

// Product is a delivery storefront item. Managed by the back-office; read-only here.
type Product struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	ImageURL        string           `db:"image_url" json:"image_url"`
	Unit            string           `db:"unit" json:"unit"`
	Stock           int              `db:"stock" json:"stock"`
	Price           decimal.Decimal  `db:"price" json:"price"`
	OriginalPrice   *decimal.Decimal `db:"original_price" json:"original_price,omitempty"`
	DiscountPercent *int             `db:"discount_percent" json:"discount_percent,omitempty"`
	Active          bool             `db:"active" json:"active"`
}
