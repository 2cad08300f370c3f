// Package schema versions a SQLite database through an ordered set of
// migrations.
//
// A Migration is plain data: the version pair it moves the store between and
// the statements that perform the change. Migrations are collected in a
// Registry, which rejects duplicate version pairs and can verify that every
// supported starting version reaches the latest one. An Executor resolves the
// chain between two versions and applies it inside a transaction, storing the
// resulting version in the database header (PRAGMA user_version).
package schema
