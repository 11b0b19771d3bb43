package repository

import "errors"

// Sentinel kinds for repository errors. These allow errors.Is/As from callers.
var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrInvalidGrant = errors.New("invalid grant")
)
