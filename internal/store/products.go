package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dkovac/stockroom/internal/model"
)

// CreateProductParams holds the fields for a new product. Stock defaults to
// zero when the caller leaves it unset.
type CreateProductParams struct {
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    int
	Image    string
}

// UpdateProductParams holds a merge-patch for an existing product. Empty
// string fields keep the current value. Stock is a pointer because zero is a
// valid target quantity and must be distinguishable from "not provided".
type UpdateProductParams struct {
	Name     string
	Unit     string
	Category string
	Brand    string
	Stock    *int
	Image    string
}

// CreateProduct inserts a product and appends the initial CREATE ledger
// entry. The insert happens first; if it fails, no ledger entry is written.
func CreateProduct(ctx context.Context, db *sql.DB, p CreateProductParams) (*model.Product, error) {
	if p.Name == "" {
		return nil, ErrNameRequired
	}
	if p.Stock < 0 {
		return nil, ErrNegativeStock
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO products (name, unit, category, brand, stock, image)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Unit, p.Category, p.Brand, p.Stock, p.Image,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting product id: %w", err)
	}

	// The ledger append is best-effort: a failure here must not fail the
	// create that already happened.
	if err := AppendHistory(ctx, db, id, 0, p.Stock, model.ActionCreate); err != nil {
		slog.Error("failed to append create history", "product_id", id, "error", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID, with its status computed from stock.
func GetProduct(ctx context.Context, db *sql.DB, id int64) (*model.Product, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, name, unit, category, brand, stock, image, created_at, updated_at
		 FROM products WHERE id = ?`, id,
	)
	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return product, nil
}

// UpdateProduct applies a merge-patch to a product and appends an UPDATE
// ledger entry when, and only when, stock was provided with a new value.
// updated_at is refreshed on every successful write regardless of which
// fields changed.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, p UpdateProductParams) (*model.Product, error) {
	// Read the current row first: it supplies both the merge-patch defaults
	// and the old_quantity snapshot for the ledger.
	current, err := GetProduct(ctx, db, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if p.Name != "" {
		name = p.Name
	}
	unit := current.Unit
	if p.Unit != "" {
		unit = p.Unit
	}
	category := current.Category
	if p.Category != "" {
		category = p.Category
	}
	brand := current.Brand
	if p.Brand != "" {
		brand = p.Brand
	}
	image := current.Image
	if p.Image != "" {
		image = p.Image
	}
	stock := current.Stock
	if p.Stock != nil {
		stock = *p.Stock
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}

	_, err = db.ExecContext(ctx,
		`UPDATE products
		 SET name = ?, unit = ?, category = ?, brand = ?, stock = ?, image = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, unit, category, brand, stock, image, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	// Exactly one ledger entry per stock transition. Edits to other fields
	// and writes of the same stock value produce none.
	if p.Stock != nil && *p.Stock != current.Stock {
		if err := AppendHistory(ctx, db, id, current.Stock, *p.Stock, model.ActionUpdate); err != nil {
			slog.Error("failed to append update history", "product_id", id, "error", err)
		}
	}

	return GetProduct(ctx, db, id)
}

// DeleteProduct removes a product. Its history entries are left in place as
// a permanent audit record, and no DELETE entry is written.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProductImage records the stored image path for a product.
func SetProductImage(ctx context.Context, db *sql.DB, id int64, path string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE products SET image = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		path, id,
	)
	if err != nil {
		return fmt.Errorf("setting product image: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting product image: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	product := &model.Product{}
	var unit, category, brand, image sql.NullString
	err := row.Scan(&product.ID, &product.Name, &unit, &category, &brand,
		&product.Stock, &image, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	product.Unit = unit.String
	product.Category = category.String
	product.Brand = brand.String
	product.Image = image.String
	product.Status = model.StockStatus(product.Stock)
	return product, nil
}
