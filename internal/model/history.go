package model

import "time"

// HistoryEntry is one stock-quantity transition for a product. Entries are
// append-only and survive deletion of the product they refer to.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	ActionType  string    `json:"action_type"`
	ChangeDate  time.Time `json:"change_date"`
	UserInfo    string    `json:"user_info,omitempty"`
}

// History action types.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
)
