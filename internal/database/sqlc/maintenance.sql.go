package sqldb

import "context"

const deleteAllConnections = `DELETE FROM connections`

func (q *Queries) DeleteAllConnections(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllConnections)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllPreferences = `DELETE FROM preferences`

func (q *Queries) DeleteAllPreferences(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllPreferences)
	return err
}
