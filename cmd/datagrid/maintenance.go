package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stef-k/datagrid/internal/database/repository"
	"github.com/stef-k/datagrid/internal/prefs"
	"github.com/stef-k/datagrid/internal/service"
)

// restoreCategories re-adds categories saved by a previous reset.
func restoreCategories(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	path, err := prefs.CategoriesPath()
	if err != nil {
		return nil
	}
	cats, err := prefs.LoadCategories(path)
	if err != nil {
		return fmt.Errorf("load saved categories: %w", err)
	}
	repo := repository.NewCategoryRepo(db)
	for _, c := range cats {
		if err := repo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("restore category %s: %w", c.Name, err)
		}
	}
	if len(cats) > 0 {
		log.Debug("categories restored", "file", path, "count", len(cats))
	}
	return nil
}

func resetCmd(f *flags) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and restore default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			noSample := *f
			noSample.sample = 0
			e, err := setup(ctx, noSample)
			if err != nil {
				return err
			}
			defer e.Close()

			if keep {
				cats, err := e.svc.Categories.List(ctx)
				if err != nil {
					return err
				}
				path, err := prefs.CategoriesPath()
				if err != nil {
					return err
				}
				if err := prefs.SaveCategories(path, cats); err != nil {
					return fmt.Errorf("save categories: %w", err)
				}
			}
			m := &service.MaintenanceService{DB: e.db}
			if err := m.Reset(ctx); err != nil {
				return err
			}
			if keep {
				if err := restoreCategories(ctx, e.db, e.log); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep-categories", false, "keep custom categories across the reset")
	return cmd
}

func compactCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Renumber record positions and reclaim space",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, *f)
			if err != nil {
				return err
			}
			defer e.Close()
			m := &service.MaintenanceService{DB: e.db}
			n, err := m.Compact(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renumbered %d records\n", n)
			return nil
		},
	}
}
