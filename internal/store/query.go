package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dkovac/stockroom/internal/model"
)

// ProductFilter narrows and orders a product listing. Zero values mean "no
// constraint"; Sort defaults to name ascending.
type ProductFilter struct {
	Search   string
	Category string
	Brand    string
	Status   string
	Sort     string
	Order    string
}

// sortColumns is the allow-list for ORDER BY. Anything else falls back to
// name so caller input never reaches the SQL text.
var sortColumns = map[string]bool{
	"name":       true,
	"category":   true,
	"brand":      true,
	"stock":      true,
	"created_at": true,
	"updated_at": true,
}

// ListProducts returns products matching the filter, with status computed
// from stock on each row.
func ListProducts(ctx context.Context, db *sql.DB, filter ProductFilter) ([]model.Product, error) {
	query := `SELECT id, name, unit, category, brand, stock, image, created_at, updated_at
	          FROM products WHERE 1=1`
	var args []any

	if filter.Search != "" {
		query += ` AND (name LIKE ? OR category LIKE ? OR brand LIKE ?)`
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Brand != "" {
		query += ` AND brand = ?`
		args = append(args, filter.Brand)
	}

	switch filter.Status {
	case model.StatusInStock:
		query += fmt.Sprintf(` AND stock >= %d`, model.LowStockThreshold)
	case model.StatusLowStock:
		query += fmt.Sprintf(` AND stock > 0 AND stock < %d`, model.LowStockThreshold)
	case model.StatusOutOfStock:
		query += ` AND stock = 0`
	}

	sort := filter.Sort
	if !sortColumns[sort] {
		sort = "name"
	}
	order := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		order = "DESC"
	}
	query += ` ORDER BY ` + sort + ` ` + order

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

// DistinctCategories returns the non-empty category values currently in use,
// sorted, for populating filter controls.
func DistinctCategories(ctx context.Context, db *sql.DB) ([]string, error) {
	return distinctValues(ctx, db,
		`SELECT DISTINCT category FROM products
		 WHERE category IS NOT NULL AND category != '' ORDER BY category`)
}

// DistinctBrands returns the non-empty brand values currently in use, sorted.
func DistinctBrands(ctx context.Context, db *sql.DB) ([]string, error) {
	return distinctValues(ctx, db,
		`SELECT DISTINCT brand FROM products
		 WHERE brand IS NOT NULL AND brand != '' ORDER BY brand`)
}

func distinctValues(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing distinct values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
