package store

import (
	"context"
	"database/sql"
	"fmt"
)

// sampleProducts is the starter catalog inserted on first run.
var sampleProducts = []CreateProductParams{
	{Name: "Laptop Dell XPS 13", Unit: "piece", Category: "Electronics", Brand: "Dell", Stock: 15},
	{Name: `MacBook Pro 16"`, Unit: "piece", Category: "Electronics", Brand: "Apple", Stock: 8},
	{Name: "Office Chair Ergonomic", Unit: "piece", Category: "Furniture", Brand: "Herman Miller", Stock: 12},
	{Name: "Standing Desk", Unit: "piece", Category: "Furniture", Brand: "IKEA", Stock: 5},
	{Name: "Wireless Mouse MX Master", Unit: "piece", Category: "Electronics", Brand: "Logitech", Stock: 25},
	{Name: "Mechanical Keyboard", Unit: "piece", Category: "Electronics", Brand: "Corsair", Stock: 18},
	{Name: `Monitor 27" 4K`, Unit: "piece", Category: "Electronics", Brand: "LG", Stock: 7},
	{Name: "Webcam HD Pro", Unit: "piece", Category: "Electronics", Brand: "Logitech", Stock: 22},
	{Name: "Coffee Beans Premium", Unit: "kg", Category: "Food & Beverage", Brand: "Starbucks", Stock: 0},
	{Name: "Green Tea Organic", Unit: "box", Category: "Food & Beverage", Brand: "Twinings", Stock: 45},
}

// SeedSampleProducts inserts the starter catalog if the products table is
// empty and returns the number of rows inserted. Seed rows are written
// directly, without ledger entries, so the demo data doesn't fabricate an
// audit trail.
func SeedSampleProducts(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, p := range sampleProducts {
		_, err := db.ExecContext(ctx,
			`INSERT INTO products (name, unit, category, brand, stock)
			 VALUES (?, ?, ?, ?, ?)`,
			p.Name, p.Unit, p.Category, p.Brand, p.Stock,
		)
		if err != nil {
			return 0, fmt.Errorf("seeding product %q: %w", p.Name, err)
		}
	}
	return len(sampleProducts), nil
}
