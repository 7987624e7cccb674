// Package store implements the per-entity record stores over a single
// embedded SQLite file. A generic table engine handles schema-driven
// table creation, composite-key addressing and model marshalling; thin
// entity wrappers add the per-table queries and seeding.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// DB owns the connection pool for the single database file plus the
// process-wide write mutex. Every mutating table operation serializes on
// the mutex; this is the one serialization point that makes
// next-id-then-insert and check-then-upsert atomic with respect to other
// writers in this process. Reads go straight to the pool.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// Open opens (creating if necessary) the database file at path. Foreign
// key enforcement is switched on; it is the backstop for the composite-key
// table's references. The _pragma form is the driver's own syntax and is
// applied to every connection in the pool.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("could not open database at %s: %w", path, err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database at %s: %w", path, err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}
