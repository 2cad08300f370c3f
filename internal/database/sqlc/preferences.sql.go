package sqldb

import "context"

const getPreference = `SELECT key, value FROM preferences WHERE key = ?`

func (q *Queries) GetPreference(ctx context.Context, key string) (Preference, error) {
	row := q.db.QueryRowContext(ctx, getPreference, key)
	var i Preference
	err := row.Scan(&i.Key, &i.Value)
	return i, err
}

const listPreferences = `SELECT key, value FROM preferences ORDER BY key ASC`

func (q *Queries) ListPreferences(ctx context.Context) ([]Preference, error) {
	rows, err := q.db.QueryContext(ctx, listPreferences)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Preference
	for rows.Next() {
		var i Preference
		if err := rows.Scan(&i.Key, &i.Value); err != nil {
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

const upsertPreference = `INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

type UpsertPreferenceParams struct {
	Key   string
	Value string
}

func (q *Queries) UpsertPreference(ctx context.Context, arg UpsertPreferenceParams) error {
	_, err := q.db.ExecContext(ctx, upsertPreference, arg.Key, arg.Value)
	return err
}

const deletePreference = `DELETE FROM preferences WHERE key = ?`

func (q *Queries) DeletePreference(ctx context.Context, key string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePreference, key)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
