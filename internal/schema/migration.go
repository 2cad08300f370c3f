package schema

import (
	"fmt"
	"strings"
)

// Key identifies a migration by the version pair it connects.
type Key struct {
	From int
	To   int
}

func (k Key) String() string {
	return fmt.Sprintf("%d->%d", k.From, k.To)
}

// Migration moves a store from version From to version To by running
// Statements in order. To is usually From+1; a wider span marks a multi-step
// migration that replaces the incremental chain between the two versions.
type Migration struct {
	From       int
	To         int
	Name       string
	Statements []string
}

// Key returns the version pair of the migration.
func (m Migration) Key() Key {
	return Key{From: m.From, To: m.To}
}

// Span reports how many versions the migration advances.
func (m Migration) Span() int {
	return m.To - m.From
}

func (m Migration) String() string {
	if m.Name == "" {
		return m.Key().String()
	}
	return fmt.Sprintf("%s (%s)", m.Key(), m.Name)
}

func (m Migration) validate() error {
	if m.From < 0 {
		return &InvalidMigrationError{Key: m.Key(), Reason: "negative from version"}
	}
	if m.To <= m.From {
		return &InvalidMigrationError{Key: m.Key(), Reason: "to version must be greater than from version"}
	}
	if len(m.Statements) == 0 {
		return &InvalidMigrationError{Key: m.Key(), Reason: "no statements"}
	}
	for i, stmt := range m.Statements {
		if strings.TrimSpace(stmt) == "" {
			return &InvalidMigrationError{Key: m.Key(), Reason: fmt.Sprintf("statement %d is empty", i)}
		}
	}
	return nil
}

func (m Migration) clone() Migration {
	stmts := make([]string, len(m.Statements))
	copy(stmts, m.Statements)
	m.Statements = stmts
	return m
}
