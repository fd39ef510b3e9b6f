package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkovac/stockroom/internal/model"
)

// AppendHistory records one stock transition in the inventory ledger. The
// ledger exposes no update or delete: entries are write-once.
func AppendHistory(ctx context.Context, db *sql.DB, productID int64, oldQty, newQty int, action string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO inventory_history (product_id, old_quantity, new_quantity, action_type)
		 VALUES (?, ?, ?, ?)`,
		productID, oldQty, newQty, action,
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// ListHistory returns a product's stock transitions, newest first. The LEFT
// JOIN keeps entries for deleted products retrievable; their product name
// comes back empty. The id tie-break keeps same-second entries in append
// order, since change_date only has second resolution.
func ListHistory(ctx context.Context, db *sql.DB, productID int64) ([]model.HistoryEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.id, h.product_id, h.old_quantity, h.new_quantity, h.action_type,
		        h.change_date, h.user_info, p.name
		 FROM inventory_history h
		 LEFT JOIN products p ON p.id = h.product_id
		 WHERE h.product_id = ?
		 ORDER BY h.change_date DESC, h.id DESC`, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var userInfo, productName sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ProductID, &entry.OldQuantity,
			&entry.NewQuantity, &entry.ActionType, &entry.ChangeDate,
			&userInfo, &productName); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entry.UserInfo = userInfo.String
		entry.ProductName = productName.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
