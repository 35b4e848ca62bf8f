package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the records store. Foreign keys are enforced and writers wait up to five
// seconds on a locked file. The pool holds one connection: the grid saves from a
// single thread and sqlite serialises writers anyway.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// WithTx runs fn in one transaction bound to ctx. A grid save or a maintenance pass
// either lands completely or, when fn fails, not at all.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Now is the timestamp written to created_at and updated_at: UTC, whole seconds, the
// same resolution as CURRENT_TIMESTAMP in the migrations.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
