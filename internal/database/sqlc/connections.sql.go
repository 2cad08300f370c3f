package sqldb

import (
	"context"
	"database/sql"
)

const listConnections = `SELECT id, name, url, username, password, isConnected FROM connections ORDER BY name ASC`

func (q *Queries) ListConnections(ctx context.Context) ([]Connection, error) {
	rows, err := q.db.QueryContext(ctx, listConnections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Connection
	for rows.Next() {
		var i Connection
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Url,
			&i.Username,
			&i.Password,
			&i.IsConnected,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findConnectionByID = `SELECT id, name, url, username, password, isConnected FROM connections WHERE id = ?`

func (q *Queries) FindConnectionByID(ctx context.Context, id int64) (Connection, error) {
	row := q.db.QueryRowContext(ctx, findConnectionByID, id)
	var i Connection
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Url,
		&i.Username,
		&i.Password,
		&i.IsConnected,
	)
	return i, err
}

const insertConnection = `INSERT OR IGNORE INTO connections (id, name, url, username, password, isConnected) VALUES (?, ?, ?, ?, ?, ?)`

type InsertConnectionParams struct {
	ID          sql.NullInt64
	Name        string
	Url         string
	Username    string
	Password    string
	IsConnected int64
}

func (q *Queries) InsertConnection(ctx context.Context, arg InsertConnectionParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertConnection,
		arg.ID,
		arg.Name,
		arg.Url,
		arg.Username,
		arg.Password,
		arg.IsConnected,
	)
}

const updateConnection = `UPDATE connections SET name = ?, url = ?, username = ?, password = ?, isConnected = ? WHERE id = ?`

type UpdateConnectionParams struct {
	Name        string
	Url         string
	Username    string
	Password    string
	IsConnected int64
	ID          int64
}

func (q *Queries) UpdateConnection(ctx context.Context, arg UpdateConnectionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateConnection,
		arg.Name,
		arg.Url,
		arg.Username,
		arg.Password,
		arg.IsConnected,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteConnectionByID = `DELETE FROM connections WHERE id = ?`

func (q *Queries) DeleteConnectionByID(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteConnectionByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
