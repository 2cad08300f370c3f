package schema

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HistoryTable records every applied migration step.
const HistoryTable = "schema_migrations"

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// HistoryRecord is one row of the history table.
type HistoryRecord struct {
	ID        int64
	From      int
	To        int
	Name      string
	AppliedAt time.Time
}

// ReadVersion returns the schema version stored in the database header.
func ReadVersion(ctx context.Context, q Querier) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("schema: read user_version: %w", err)
	}
	return version, nil
}

func writeVersion(ctx context.Context, e Execer, version int) error {
	// PRAGMA does not accept bound parameters.
	if _, err := e.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("schema: write user_version: %w", err)
	}
	return nil
}

const createHistoryTable = `CREATE TABLE IF NOT EXISTS ` + HistoryTable + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
	from_version INTEGER NOT NULL,
	to_version INTEGER NOT NULL,
	name TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

const insertHistory = `INSERT INTO ` + HistoryTable + ` (from_version, to_version, name, applied_at) VALUES (?, ?, ?, ?)`

const selectHistory = `SELECT id, from_version, to_version, name, applied_at FROM ` + HistoryTable + ` ORDER BY id ASC`

func ensureHistory(ctx context.Context, e Execer) error {
	if _, err := e.ExecContext(ctx, createHistoryTable); err != nil {
		return fmt.Errorf("schema: create history table: %w", err)
	}
	return nil
}

func recordHistory(ctx context.Context, e Execer, m Migration, at time.Time) error {
	if _, err := e.ExecContext(ctx, insertHistory, m.From, m.To, m.Name, at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("schema: record migration %s: %w", m.Key(), err)
	}
	return nil
}

// History returns the applied migration steps in application order. A
// database without a history table yields no records.
func History(ctx context.Context, q Querier) ([]HistoryRecord, error) {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, HistoryTable).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schema: look up history table: %w", err)
	}

	rows, err := q.QueryContext(ctx, selectHistory)
	if err != nil {
		return nil, fmt.Errorf("schema: read history: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var (
			rec       HistoryRecord
			appliedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.From, &rec.To, &rec.Name, &appliedAt); err != nil {
			return nil, fmt.Errorf("schema: scan history: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, appliedAt); err == nil {
			rec.AppliedAt = ts
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: read history: %w", err)
	}
	return records, nil
}
