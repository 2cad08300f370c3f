package database

import "errors"

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("database: not found")
	// ErrLocked is returned when another process holds the store.
	ErrLocked = errors.New("database: store is locked by another process")
	// ErrMissingContext is returned when a repository has no open database.
	ErrMissingContext = errors.New("database: missing database context")
)
