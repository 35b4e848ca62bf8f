package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stef-k/datagrid/internal/database"
)

// MaintenanceService houses destructive store actions run from the command line.
type MaintenanceService struct {
	DB *sql.DB
}

var errNoDB = errors.New("maintenance: db not configured")

// Reset deletes every record and restores the default categories. The schema stays.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return errNoDB
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"records", "categories"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if err := database.SeedDefaults(ctx, s.DB); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// Compact renumbers record positions to 0..n-1, keeping their order, and reclaims
// free pages. It returns the number of records renumbered.
func (s *MaintenanceService) Compact(ctx context.Context) (int, error) {
	if s.DB == nil {
		return 0, errNoDB
	}
	var moved int
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id, position FROM records ORDER BY position, created_at`)
		if err != nil {
			return err
		}
		type pos struct {
			id  string
			old int
		}
		var all []pos
		for rows.Next() {
			var p pos
			if err := rows.Scan(&p.id, &p.old); err != nil {
				rows.Close()
				return err
			}
			all = append(all, p)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		for i, p := range all {
			if p.old == i {
				continue
			}
			if _, err := tx.ExecContext(ctx, `UPDATE records SET position = ? WHERE id = ?`, i, p.id); err != nil {
				return fmt.Errorf("renumber %s: %w", p.id, err)
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return moved, nil
}
