// Package database provides connection management and the repositories of
// the PwnEyes store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/antbear/pwnstore/db/migrations"
	"github.com/antbear/pwnstore/internal/config"
	sqldb "github.com/antbear/pwnstore/internal/database/sqlc"
	"github.com/antbear/pwnstore/internal/schema"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

// Context holds the database connection and query interface.
type Context struct {
	DB      *sql.DB
	Queries *sqldb.Queries
	Path    string

	lock        *flock.Flock
	logger      *zap.Logger
	granularity schema.Granularity
}

// Option configures how a store is opened and migrated.
type Option func(*Context)

// WithLogger sets the logger handed to the migration executor.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGranularity selects one transaction per upgrade run (the default) or
// one per migration step.
func WithGranularity(g schema.Granularity) Option {
	return func(c *Context) {
		c.granularity = g
	}
}

// CreateDatabase opens the store and migrates it to migrations.Latest.
func CreateDatabase(dbPath string, opts ...Option) (*Context, error) {
	dbCtx, err := OpenDatabase(dbPath, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := MigrateDatabase(context.Background(), dbCtx, migrations.Latest); err != nil {
		_ = CloseDatabase(dbCtx)
		return nil, err
	}

	return dbCtx, nil
}

// OpenDatabase opens the store without migrating it. File-backed stores are
// locked exclusively until CloseDatabase.
func OpenDatabase(dbPath string, opts ...Option) (*Context, error) {
	path := dbPath
	if path == "" {
		path = config.GetDBPath()
	}

	dbCtx := &Context{
		Path:        path,
		logger:      zap.NewNop(),
		granularity: schema.GranularityRun,
	}
	for _, opt := range opts {
		opt(dbCtx)
	}

	var dsn string
	if path == MemoryPath {
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	} else {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		lock := flock.New(config.LockPath(absPath))
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock database: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrLocked, absPath)
		}
		dbCtx.lock = lock
		dbCtx.Path = absPath
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", filepath.ToSlash(absPath))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		dbCtx.unlock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps migrations single-threaded on this handle and
	// keeps an in-memory store alive for the handle's lifetime.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		dbCtx.unlock()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbCtx.DB = db
	dbCtx.Queries = sqldb.New(db)
	return dbCtx, nil
}

// MigrateDatabase upgrades the store to target using the embedded
// migrations.
func MigrateDatabase(ctx context.Context, dbCtx *Context, target int) (schema.Result, error) {
	if dbCtx == nil || dbCtx.DB == nil {
		return schema.Result{}, ErrMissingContext
	}

	reg, err := migrations.Registry()
	if err != nil {
		return schema.Result{}, err
	}

	exec := schema.NewExecutor(reg,
		schema.WithLogger(dbCtx.logger),
		schema.WithGranularity(dbCtx.granularity),
	)
	result, err := exec.Migrate(ctx, dbCtx.DB, target)
	if err != nil {
		return result, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return result, nil
}

// CloseDatabase closes the connection and releases the store lock.
func CloseDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	err := ctx.DB.Close()
	ctx.unlock()
	return err
}

// ClearDatabase removes all connection and preference rows.
func ClearDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}

	tx, err := ctx.DB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := queriesFromContext(ctx).WithTx(tx)
	bg := context.Background()

	if _, err := queries.DeleteAllConnections(bg); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to delete connections: %w (rollback error: %w)", err, rbErr)
		}
		return fmt.Errorf("failed to delete connections: %w", err)
	}

	if err := queries.DeleteAllPreferences(bg); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to delete preferences: %w (rollback error: %w)", err, rbErr)
		}
		return fmt.Errorf("failed to delete preferences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear transaction: %w", err)
	}

	return nil
}

func (c *Context) unlock() {
	if c.lock == nil {
		return
	}
	_ = c.lock.Unlock()
	c.lock = nil
}
