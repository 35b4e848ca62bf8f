package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so repositories work inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Category represents a category row.
type Category struct {
	ID        string
	Name      string
	SortOrder int
}

// Record represents one editable grid row.
type Record struct {
	ID         string
	Position   int
	Name       string
	Category   string
	Quantity   int64
	PriceCents int64
	Active     bool
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
