package database

import (
	"context"
	"database/sql"
	"errors"

	sqldb "github.com/antbear/pwnstore/internal/database/sqlc"
)

// PreferenceRepository stores key/value settings in the preferences table.
type PreferenceRepository struct {
	ctx *Context
}

// NewPreferenceRepository returns a repository over dbCtx. Calls fail with
// ErrMissingContext when dbCtx is nil.
func NewPreferenceRepository(dbCtx *Context) *PreferenceRepository {
	return &PreferenceRepository{ctx: dbCtx}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return "", ErrMissingContext
	}

	row, err := queries.GetPreference(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return row.Value, nil
}

// Set inserts or replaces the value stored under key.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return ErrMissingContext
	}

	return queries.UpsertPreference(ctx, sqldb.UpsertPreferenceParams{Key: key, Value: value})
}

func (r *PreferenceRepository) Delete(ctx context.Context, key string) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, ErrMissingContext
	}

	affected, err := queries.DeletePreference(ctx, key)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PreferenceRepository) List(ctx context.Context) ([]PreferenceRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, ErrMissingContext
	}

	rows, err := queries.ListPreferences(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]PreferenceRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, PreferenceRecord{Key: row.Key, Value: row.Value})
	}
	return result, nil
}
