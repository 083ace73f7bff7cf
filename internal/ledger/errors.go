package ledger

import "errors"

var (
	// ErrNotFound indicates the referenced order or code does not exist.
	ErrNotFound = errors.New("ledger: not found")
	// ErrCodeExists indicates a gift code with the same value is already stored.
	ErrCodeExists = errors.New("ledger: code already exists")
	// ErrCodeUsed indicates the gift code has already been redeemed.
	ErrCodeUsed = errors.New("ledger: code already used")
)
