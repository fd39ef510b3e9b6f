package model

import "time"

// Product represents a tracked inventory item.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit,omitempty"`
	Category  string    `json:"category,omitempty"`
	Brand     string    `json:"brand,omitempty"`
	Stock     int       `json:"stock"`
	Status    string    `json:"status"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stock status buckets.
const (
	StatusInStock    = "In Stock"
	StatusLowStock   = "Low Stock"
	StatusOutOfStock = "Out of Stock"
)

// LowStockThreshold is the stock level below which a product counts as low.
const LowStockThreshold = 10

// StockStatus projects a stock count onto its status bucket. The status is
// never stored; it is recomputed from stock on every read.
func StockStatus(stock int) string {
	switch {
	case stock == 0:
		return StatusOutOfStock
	case stock < LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}
