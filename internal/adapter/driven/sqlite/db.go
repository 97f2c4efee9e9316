// Package sqlite implements the ResultStore port on SQLite (modernc.org/sqlite,
// no cgo) with embedded golang-migrate migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas applied to every connection. The store has one writer (the running
// pipeline) and short-lived readers (runs list/show), so the default rollback
// journal with a busy timeout is enough.
const pragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"

// DB is the run history database. It holds a single connection, so queries
// and transactions issued through it are serialised.
type DB struct {
	conn    *sql.DB
	version uint
}

// Open opens or creates the database at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*DB, error) {
	return open(ctx, fmt.Sprintf("file:%s?%s", path, pragmas))
}

func open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// SchemaVersion returns the migration version the schema is at.
func (db *DB) SchemaVersion() uint {
	return db.version
}

// Close releases the connection.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
