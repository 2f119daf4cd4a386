// Package sqlite implements the repository interfaces on modernc.org/sqlite,
// a pure Go SQLite port: no cgo, so the binary cross-compiles like any other Go program.
//
// dbPath examples:
//   - "data/playground.db"  → file-based database (persistent)
//   - ":memory:"            → in-memory database, used by the tests
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}

	dsn := dbPath
	if dbPath != memoryPath {
		// busy_timeout is per connection, so it goes in the DSN where every pooled
		// connection picks it up.
		dsn += "?_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand-new empty database, so the pool
	// must never grow past one.
	if dbPath == memoryPath {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open is lazy; Ping surfaces a bad path or permissions now.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a save is being written.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. The health endpoint calls it.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id         TEXT PRIMARY KEY,
			filename   TEXT NOT NULL UNIQUE,
			language   TEXT NOT NULL,
			code       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating files table: %w", err)
	}
	return nil
}
