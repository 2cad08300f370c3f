package database

import (
	"context"
	"fmt"

	"github.com/antbear/pwnstore/db/migrations"
	"github.com/antbear/pwnstore/internal/schema"
)

// SchemaStatus reports the stored schema version, the pending migration path
// and the recorded history.
func SchemaStatus(ctx context.Context, dbCtx *Context) (*Status, error) {
	if dbCtx == nil || dbCtx.DB == nil {
		return nil, ErrMissingContext
	}

	reg, err := migrations.Registry()
	if err != nil {
		return nil, err
	}

	version, err := schema.ReadVersion(ctx, dbCtx.DB)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Version: version,
		Latest:  migrations.Latest,
	}

	// A store newer than the embedded migrations has nothing pending.
	if version < status.Latest {
		pending, err := reg.Path(version, status.Latest)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pending migrations: %w", err)
		}
		status.Pending = pending
	}

	history, err := schema.History(ctx, dbCtx.DB)
	if err != nil {
		return nil, err
	}
	status.History = history

	return status, nil
}

// PlanMigrations returns the embedded migration path between two versions.
func PlanMigrations(from, to int) ([]schema.Migration, error) {
	reg, err := migrations.Registry()
	if err != nil {
		return nil, err
	}
	return reg.Path(from, to)
}
