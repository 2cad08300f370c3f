package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/antbear/pwnstore/db/migrations"
	"github.com/antbear/pwnstore/internal/config"
	"github.com/antbear/pwnstore/internal/schema"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv(config.EnvDataDir, tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func openUnmigrated(t *testing.T, opts ...Option) *Context {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.db")

	ctx, err := OpenDatabase(path, opts...)
	if err != nil {
		t.Fatalf("OpenDatabase returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = CloseDatabase(ctx)
	})
	return ctx
}

func TestDatabaseCreationAndMigration(t *testing.T) {
	ctx := setupTestDB(t)

	dbPath := filepath.Join(config.GetDataDir(), "pwneyes.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file to exist at %s: %v", dbPath, err)
	}

	var userVersion int
	if err := ctx.DB.QueryRow("PRAGMA user_version").Scan(&userVersion); err != nil {
		t.Fatalf("failed to read user_version: %v", err)
	}

	if userVersion != migrations.Latest {
		t.Fatalf("expected user_version %d, got %d", migrations.Latest, userVersion)
	}

	tables := []string{"preferences", "connections", schema.HistoryTable}
	for _, table := range tables {
		if !tableExists(t, ctx.DB, table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
	if tableExists(t, ctx.DB, "connections_new") {
		t.Fatalf("expected temporary connections_new table to be renamed away")
	}

	want := []string{"id", "name", "url", "username", "password", "isConnected"}
	got := columnNames(t, ctx.DB, "connections")
	if len(got) != len(want) {
		t.Fatalf("expected columns %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected columns %v, got %v", want, got)
		}
	}
}

func TestReopenDoesNotReapply(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "store.db")

	first, err := CreateDatabase(path)
	if err != nil {
		t.Fatalf("first CreateDatabase error: %v", err)
	}
	if err := CloseDatabase(first); err != nil {
		t.Fatalf("CloseDatabase error: %v", err)
	}

	second, err := CreateDatabase(path)
	if err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
	defer func() {
		_ = CloseDatabase(second)
	}()

	history, err := schema.History(context.Background(), second.DB)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != migrations.Latest {
		t.Fatalf("expected %d history rows, got %d", migrations.Latest, len(history))
	}
}

func TestUpgradeFromVersionTwoKeepsConnections(t *testing.T) {
	ctx := context.Background()
	dbCtx := openUnmigrated(t)

	if _, err := MigrateDatabase(ctx, dbCtx, 2); err != nil {
		t.Fatalf("MigrateDatabase(2) error: %v", err)
	}
	if _, err := dbCtx.DB.Exec(`INSERT INTO connections(name, url, username, password) VALUES('garden', 'http://10.0.0.2:8080', 'changeme', 'changeme')`); err != nil {
		t.Fatalf("insert at version 2 failed: %v", err)
	}

	result, err := MigrateDatabase(ctx, dbCtx, 3)
	if err != nil {
		t.Fatalf("MigrateDatabase(3) error: %v", err)
	}
	if result.From != 2 || result.To != 3 || len(result.Applied) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	repo := NewConnectionRepository(dbCtx)
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "garden" || list[0].IsConnected {
		t.Fatalf("expected migrated connection, got %+v", list)
	}

	if _, err := dbCtx.DB.Exec(`INSERT INTO connections DEFAULT VALUES`); err != nil {
		t.Fatalf("insert with defaults failed: %v", err)
	}
	var name string
	if err := dbCtx.DB.QueryRow(`SELECT name FROM connections ORDER BY id DESC LIMIT 1`).Scan(&name); err != nil {
		t.Fatalf("select default row failed: %v", err)
	}
	if name != "undefined" {
		t.Fatalf("expected default name 'undefined', got %q", name)
	}
}

func TestMigrateDatabasePerStep(t *testing.T) {
	dbCtx := openUnmigrated(t, WithGranularity(schema.GranularityStep))

	result, err := MigrateDatabase(context.Background(), dbCtx, migrations.Latest)
	if err != nil {
		t.Fatalf("MigrateDatabase error: %v", err)
	}
	if len(result.Applied) != migrations.Latest {
		t.Fatalf("expected %d steps, got %d", migrations.Latest, len(result.Applied))
	}
	for i, m := range result.Applied {
		if m.From != i || m.To != i+1 {
			t.Fatalf("step %d applied out of order: %s", i, m.Key())
		}
	}
}

func TestMigrateDatabaseRefusesDowngrade(t *testing.T) {
	dbCtx := openUnmigrated(t)
	ctx := context.Background()

	if _, err := MigrateDatabase(ctx, dbCtx, migrations.Latest); err != nil {
		t.Fatalf("MigrateDatabase error: %v", err)
	}

	_, err := MigrateDatabase(ctx, dbCtx, 1)
	if !errors.Is(err, schema.ErrDowngrade) {
		t.Fatalf("expected ErrDowngrade, got %v", err)
	}
	var noPath *schema.NoPathError
	if !errors.As(err, &noPath) {
		t.Fatalf("expected NoPathError, got %T", err)
	}
}

func TestOpenDatabaseIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	first, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase error: %v", err)
	}

	if _, err := OpenDatabase(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for second open, got %v", err)
	}

	if err := CloseDatabase(first); err != nil {
		t.Fatalf("CloseDatabase error: %v", err)
	}

	again, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("expected reopen after close to succeed: %v", err)
	}
	_ = CloseDatabase(again)
}

func TestMemoryDatabase(t *testing.T) {
	dbCtx, err := CreateDatabase(MemoryPath)
	if err != nil {
		t.Fatalf("CreateDatabase(:memory:) error: %v", err)
	}
	defer func() {
		_ = CloseDatabase(dbCtx)
	}()

	if !tableExists(t, dbCtx.DB, "connections") {
		t.Fatalf("expected connections table in memory store")
	}
}

func TestClearDatabaseRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	insertConnection(t, ctx.DB, "pi", "http://10.0.0.2")
	insertPreference(t, ctx.DB, "theme", "dark")

	assertCount(t, ctx.DB, "connections", 1)
	assertCount(t, ctx.DB, "preferences", 1)

	if err := ClearDatabase(ctx); err != nil {
		t.Fatalf("ClearDatabase returned error: %v", err)
	}

	assertCount(t, ctx.DB, "connections", 0)
	assertCount(t, ctx.DB, "preferences", 0)
}

func TestSchemaStatus(t *testing.T) {
	ctx := context.Background()
	dbCtx := openUnmigrated(t)

	if _, err := MigrateDatabase(ctx, dbCtx, 1); err != nil {
		t.Fatalf("MigrateDatabase(1) error: %v", err)
	}

	status, err := SchemaStatus(ctx, dbCtx)
	if err != nil {
		t.Fatalf("SchemaStatus error: %v", err)
	}
	if status.Version != 1 || status.Latest != migrations.Latest || status.UpToDate() {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.Pending) != 2 || len(status.History) != 1 {
		t.Fatalf("expected 2 pending and 1 history row, got %d and %d", len(status.Pending), len(status.History))
	}

	if _, err := MigrateDatabase(ctx, dbCtx, migrations.Latest); err != nil {
		t.Fatalf("MigrateDatabase error: %v", err)
	}
	status, err = SchemaStatus(ctx, dbCtx)
	if err != nil {
		t.Fatalf("SchemaStatus error: %v", err)
	}
	if !status.UpToDate() || len(status.Pending) != 0 {
		t.Fatalf("expected up to date status, got %+v", status)
	}
}

func TestPlanMigrations(t *testing.T) {
	path, err := PlanMigrations(0, migrations.Latest)
	if err != nil {
		t.Fatalf("PlanMigrations error: %v", err)
	}
	if len(path) != 3 || path[1].Name != "create_connections" {
		t.Fatalf("unexpected plan %+v", path)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func columnNames(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("table_info failed for %s: %v", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			t.Fatalf("table_info scan failed: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("table_info rows failed: %v", err)
	}
	return names
}

func insertConnection(t *testing.T, db *sql.DB, name, url string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO connections(name, url, username, password) VALUES(?, ?, 'pi', 'raspberry')`, name, url)
	if err != nil {
		t.Fatalf("insertConnection failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertConnection LastInsertId failed: %v", err)
	}
	return id
}

func insertPreference(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO preferences(key, value) VALUES(?, ?)`, key, value); err != nil {
		t.Fatalf("insertPreference failed: %v", err)
	}
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
