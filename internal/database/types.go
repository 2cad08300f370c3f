package database

import "github.com/antbear/pwnstore/internal/schema"

// ConnectionRecord represents a row in the connections table: one saved
// device web UI endpoint and its credentials.
type ConnectionRecord struct {
	ID          int64
	Name        string
	URL         string
	Username    string
	Password    string
	IsConnected bool
}

// PreferenceRecord is a row of the preferences key/value table.
type PreferenceRecord struct {
	Key   string
	Value string
}

// Status describes where the store's schema stands relative to the
// embedded migrations.
type Status struct {
	Version int
	Latest  int
	Pending []schema.Migration
	History []schema.HistoryRecord
}

// UpToDate reports whether no migrations are pending.
func (s Status) UpToDate() bool {
	return s.Version == s.Latest
}
