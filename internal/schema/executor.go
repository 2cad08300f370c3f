package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Granularity selects how many transactions an upgrade run uses.
type Granularity int

const (
	// GranularityRun applies the whole path in one transaction. A failure
	// leaves the store exactly as it was before the run.
	GranularityRun Granularity = iota
	// GranularityStep commits after every migration. A failure rolls back
	// the failing step only; the stored version is that of the last
	// committed step.
	GranularityStep
)

func (g Granularity) String() string {
	switch g {
	case GranularityRun:
		return "run"
	case GranularityStep:
		return "step"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Result describes a completed, or partially completed, upgrade run.
type Result struct {
	From    int
	To      int
	Applied []Migration
}

// Executor applies registry paths to a database. Runs on the same Executor
// are serialised.
type Executor struct {
	registry    *Registry
	logger      *zap.Logger
	granularity Granularity
	history     bool
	now         func() time.Time

	mu sync.Mutex
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for run and step events.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithGranularity sets the transaction granularity. The default is
// GranularityRun.
func WithGranularity(g Granularity) Option {
	return func(e *Executor) {
		e.granularity = g
	}
}

// WithHistory toggles recording applied steps in HistoryTable. It is on by
// default.
func WithHistory(enabled bool) Option {
	return func(e *Executor) {
		e.history = enabled
	}
}

// NewExecutor returns an executor over reg.
func NewExecutor(reg *Registry, opts ...Option) *Executor {
	e := &Executor{
		registry:    reg,
		logger:      zap.NewNop(),
		granularity: GranularityRun,
		history:     true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Migrate reads the stored version and upgrades the database to target.
func (e *Executor) Migrate(ctx context.Context, db *sql.DB, target int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := ReadVersion(ctx, db)
	if err != nil {
		return Result{}, err
	}
	return e.upgrade(ctx, db, current, target)
}

// Upgrade applies the path from current to target. The caller vouches for
// current; it is not compared against the stored version.
func (e *Executor) Upgrade(ctx context.Context, db *sql.DB, current, target int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.upgrade(ctx, db, current, target)
}

func (e *Executor) upgrade(ctx context.Context, db *sql.DB, current, target int) (Result, error) {
	result := Result{From: current, To: current}

	path, err := e.registry.Path(current, target)
	if err != nil {
		return result, err
	}
	if len(path) == 0 {
		e.logger.Debug("schema up to date", zap.Int("version", current))
		return result, nil
	}

	e.logger.Info("upgrading schema",
		zap.Int("from", current),
		zap.Int("to", target),
		zap.Int("steps", len(path)),
		zap.Stringer("granularity", e.granularity),
	)

	switch e.granularity {
	case GranularityStep:
		for _, m := range path {
			step := m
			err := e.withTx(ctx, db, func(tx *sql.Tx) error {
				if err := e.apply(ctx, tx, step); err != nil {
					return err
				}
				return writeVersion(ctx, tx, step.To)
			})
			if err != nil {
				e.logger.Error("schema step rolled back", zap.Stringer("migration", step.Key()), zap.Error(err))
				return result, err
			}
			result.To = step.To
			result.Applied = append(result.Applied, step)
		}
	default:
		err := e.withTx(ctx, db, func(tx *sql.Tx) error {
			for _, m := range path {
				if err := e.apply(ctx, tx, m); err != nil {
					return err
				}
			}
			return writeVersion(ctx, tx, target)
		})
		if err != nil {
			e.logger.Error("schema upgrade rolled back", zap.Int("version", current), zap.Error(err))
			return result, err
		}
		result.To = target
		result.Applied = path
	}

	e.logger.Info("schema upgraded", zap.Int("from", result.From), zap.Int("to", result.To))
	return result, nil
}

func (e *Executor) apply(ctx context.Context, tx *sql.Tx, m Migration) error {
	if e.history {
		if err := ensureHistory(ctx, tx); err != nil {
			return err
		}
	}

	for i, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &StatementError{
				Migration: m.Key(),
				Name:      m.Name,
				Index:     i,
				Statement: stmt,
				Err:       err,
			}
		}
	}

	if e.history {
		if err := recordHistory(ctx, tx, m, e.now()); err != nil {
			return err
		}
	}

	e.logger.Debug("applied migration",
		zap.Stringer("migration", m.Key()),
		zap.String("name", m.Name),
		zap.Int("statements", len(m.Statements)),
	)
	return nil
}

func (e *Executor) withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("schema: begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback error: %w)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("schema: commit transaction: %w", err)
	}
	return nil
}
