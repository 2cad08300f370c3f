package database

import (
	"context"
	"database/sql"
	"errors"

	sqldb "github.com/antbear/pwnstore/internal/database/sqlc"
)

// ConnectionRepository reads and writes rows of the connections table.
type ConnectionRepository struct {
	ctx *Context
}

// NewConnectionRepository returns a repository over dbCtx. Calls fail with
// ErrMissingContext when dbCtx is nil.
func NewConnectionRepository(dbCtx *Context) *ConnectionRepository {
	return &ConnectionRepository{ctx: dbCtx}
}

// List returns all connections ordered by name.
func (r *ConnectionRepository) List(ctx context.Context) ([]ConnectionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, ErrMissingContext
	}

	rows, err := queries.ListConnections(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ConnectionRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapConnectionRow(row))
	}
	return result, nil
}

// FindByID returns the connection with the given id, or ErrNotFound.
func (r *ConnectionRepository) FindByID(ctx context.Context, id int64) (*ConnectionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, ErrMissingContext
	}

	row, err := queries.FindConnectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record := mapConnectionRow(row)
	return &record, nil
}

// Insert stores a connection and returns its id. A record whose ID is
// already taken is ignored and 0 is returned. A zero ID lets SQLite assign
// one.
func (r *ConnectionRepository) Insert(ctx context.Context, record ConnectionRecord) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, ErrMissingContext
	}

	res, err := queries.InsertConnection(ctx, sqldb.InsertConnectionParams{
		ID:          nullID(record.ID),
		Name:        record.Name,
		Url:         record.URL,
		Username:    record.Username,
		Password:    record.Password,
		IsConnected: boolToInt64(record.IsConnected),
	})
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

func (r *ConnectionRepository) Update(ctx context.Context, record ConnectionRecord) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, ErrMissingContext
	}

	affected, err := queries.UpdateConnection(ctx, sqldb.UpdateConnectionParams{
		Name:        record.Name,
		Url:         record.URL,
		Username:    record.Username,
		Password:    record.Password,
		IsConnected: boolToInt64(record.IsConnected),
		ID:          record.ID,
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, ErrMissingContext
	}

	affected, err := queries.DeleteConnectionByID(ctx, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ConnectionRepository) DeleteAll(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, ErrMissingContext
	}

	return queries.DeleteAllConnections(ctx)
}

func mapConnectionRow(row sqldb.Connection) ConnectionRecord {
	return ConnectionRecord{
		ID:          row.ID,
		Name:        row.Name,
		URL:         row.Url,
		Username:    row.Username,
		Password:    row.Password,
		IsConnected: row.IsConnected != 0,
	}
}
