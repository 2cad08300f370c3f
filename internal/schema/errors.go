package schema

import (
	"errors"
	"fmt"
)

// ErrDowngrade is wrapped by NoPathError when the target version is older
// than the stored one. Migrations only move forward.
var ErrDowngrade = errors.New("schema: downgrade not supported")

// DuplicateMigrationError is returned by Register when a migration with the
// same version pair is already present.
type DuplicateMigrationError struct {
	Key       Key
	Existing  string
	Duplicate string
}

func (e *DuplicateMigrationError) Error() string {
	return fmt.Sprintf("schema: duplicate migration %s (registered %q, got %q)", e.Key, e.Existing, e.Duplicate)
}

// InvalidMigrationError is returned by Register for a malformed migration.
type InvalidMigrationError struct {
	Key    Key
	Reason string
}

func (e *InvalidMigrationError) Error() string {
	return fmt.Sprintf("schema: invalid migration %s: %s", e.Key, e.Reason)
}

// GapError is returned by Validate when a registered starting version has no
// contiguous chain to the latest version.
type GapError struct {
	From   int
	Latest int
}

func (e *GapError) Error() string {
	return fmt.Sprintf("schema: no migration path from version %d to latest version %d", e.From, e.Latest)
}

// NoPathError is returned when no chain of migrations connects two versions.
type NoPathError struct {
	From int
	To   int
	Err  error
}

func (e *NoPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: no migration path from version %d to %d: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("schema: no migration path from version %d to %d", e.From, e.To)
}

func (e *NoPathError) Unwrap() error {
	return e.Err
}

// StatementError reports the statement that failed while applying a
// migration. The transaction holding the statement has been rolled back.
type StatementError struct {
	Migration Key
	Name      string
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("schema: migration %s statement %d failed: %v", e.Migration, e.Index, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
