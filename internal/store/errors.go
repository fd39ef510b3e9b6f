package store

import (
	"errors"
	"strings"
)

// Errors callers can match with errors.Is. Anything else coming out of the
// store is a wrapped storage failure.
var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product name already exists")
	ErrNameRequired  = errors.New("product name is required")
	ErrNegativeStock = errors.New("stock cannot be negative")
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver exposes no typed error for this, so match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
