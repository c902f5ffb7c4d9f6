package rates

import "errors"

var (
	ErrInvalidKey    = errors.New("rate key is required")
	ErrNegativeRate  = errors.New("rate amount must not be negative")
	ErrEntryNotFound = errors.New("rate entry not found")
)
