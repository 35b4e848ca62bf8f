package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when an update or delete matched no row.
var ErrNotFound = errors.New("record not found")

// RecordFilters defines list filters.
type RecordFilters struct {
	Category   string
	ActiveOnly bool
	Search     string
	Limit      int
}

// RecordRepo handles records.
type RecordRepo struct {
	db DBTX
}

func NewRecordRepo(db DBTX) *RecordRepo { return &RecordRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *RecordRepo) WithTx(tx *sql.Tx) *RecordRepo { return &RecordRepo{db: tx} }

// Insert stores rec. Zero timestamps default to the current time.
func (r *RecordRepo) Insert(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO records(
	 id, position, name, category, quantity, price_cents, active, notes, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), COALESCE(?, CURRENT_TIMESTAMP));
	`, rec.ID, rec.Position, rec.Name, rec.Category, rec.Quantity, rec.PriceCents, rec.Active, rec.Notes,
		stamp(rec.CreatedAt), stamp(rec.UpdatedAt))
	return err
}

// Update rewrites every column of rec except created_at.
func (r *RecordRepo) Update(ctx context.Context, rec Record) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE records SET
	 position = ?, name = ?, category = ?, quantity = ?, price_cents = ?, active = ?, notes = ?,
	 updated_at = COALESCE(?, CURRENT_TIMESTAMP)
	WHERE id = ?
	`, rec.Position, rec.Name, rec.Category, rec.Quantity, rec.PriceCents, rec.Active, rec.Notes,
		stamp(rec.UpdatedAt), rec.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *RecordRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func stamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecordRepo) Get(ctx context.Context, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

const recordColumns = "id, position, name, category, quantity, price_cents, active, notes, created_at, updated_at"

func (r *RecordRepo) List(ctx context.Context, f RecordFilters) ([]Record, error) {
	var where []string
	var args []interface{}

	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.ActiveOnly {
		where = append(where, "active = 1")
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR notes LIKE ?)")
		args = append(args, "%"+f.Search+"%", "%"+f.Search+"%")
	}

	query := "SELECT " + recordColumns + " FROM records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY position, created_at"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// NextPosition is one past the highest stored position.
func (r *RecordRepo) NextPosition(ctx context.Context) (int, error) {
	var n sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(position) FROM records`).Scan(&n); err != nil {
		return 0, err
	}
	if !n.Valid {
		return 0, nil
	}
	return int(n.Int64) + 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var notes sql.NullString
	if err := s.Scan(&rec.ID, &rec.Position, &rec.Name, &rec.Category, &rec.Quantity, &rec.PriceCents,
		&rec.Active, &notes, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	return rec, nil
}
