package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stef-k/datagrid/internal/config"
	"github.com/stef-k/datagrid/internal/database"
	"github.com/stef-k/datagrid/internal/grid"
	"github.com/stef-k/datagrid/internal/service"
	"github.com/stef-k/datagrid/internal/testdata"
	"github.com/stef-k/datagrid/internal/tui"
	"github.com/stef-k/datagrid/internal/width"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

// env is everything a command needs once startup has run.
type env struct {
	cfg     config.Config
	log     *slog.Logger
	db      *sql.DB
	svc     *service.GridService
	closers []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

type flags struct {
	dbPath string
	layout string
	sample int
}

func newRoot() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:          "datagrid",
		Short:        "Sortable, filterable, editable records grid",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, f)
			if err != nil {
				return err
			}
			defer e.Close()

			p := tea.NewProgram(tui.New(ctx, e.svc, e.cfg, e.log), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return saveLayout(e)
		},
	}
	root.PersistentFlags().StringVar(&f.dbPath, "db", "", "database path (overrides config)")
	root.PersistentFlags().StringVar(&f.layout, "layout", "", "column layout file (overrides config)")
	root.PersistentFlags().IntVar(&f.sample, "sample", 200, "sample records to create in an empty database")
	root.AddCommand(checkCmd(&f), importCmd(&f), resetCmd(&f), compactCmd(&f))
	return root
}

// setup loads config, configures logging, prepares the database and builds the grid.
func setup(ctx context.Context, f flags) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if f.dbPath != "" {
		cfg.Database.Path = f.dbPath
	}
	if f.layout != "" {
		cfg.Grid.LayoutFile = f.layout
	}

	e := &env{cfg: cfg}
	e.log, err = newLogger(cfg.Log, e)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(e.log)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		e.Close()
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.Migrations); err != nil {
		e.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	e.db = db
	e.closers = append(e.closers, db)

	if err := database.SeedDefaults(ctx, db); err != nil {
		e.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	if err := restoreCategories(ctx, db, e.log); err != nil {
		e.Close()
		return nil, err
	}

	svc, err := service.NewGridService(ctx, db, options(cfg, e.log))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.svc = svc
	if f.sample > 0 {
		n, err := testdata.Seed(ctx, testdata.Repos{Categories: svc.Categories, Records: svc.Records}, f.sample, 1)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		if n > 0 {
			e.log.Info("sample records created", "count", n)
		}
	}

	layout, err := config.LoadLayout(cfg.Grid.LayoutFile)
	if err != nil {
		e.Close()
		return nil, err
	}
	if unknown := config.ApplyLayout(layout, svc.Engine.Layouts()); len(unknown) > 0 {
		e.log.Warn("layout names unknown columns", "file", cfg.Grid.LayoutFile, "columns", unknown)
	}
	return e, nil
}

func newLogger(lc config.LogConfig, e *env) (*slog.Logger, error) {
	// the TUI owns the terminal, so without a log file only errors reach stderr
	var w io.Writer = os.Stderr
	level := lc.SlogLevel()
	if lc.File != "" {
		if err := os.MkdirAll(filepath.Dir(lc.File), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		e.closers = append(e.closers, f)
	} else {
		level = max(level, slog.LevelError)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func options(cfg config.Config, log *slog.Logger) grid.Options {
	aff := width.DefaultAffordances
	if cfg.Grid.HeaderPadding > 0 {
		aff.Padding = cfg.Grid.HeaderPadding
	}
	return grid.Options{
		Editing:     cfg.Grid.Editing,
		RequireRow:  cfg.Grid.RequireRow,
		MultiSort:   cfg.Grid.MultiSort,
		UndoLimit:   cfg.Grid.UndoLimit,
		Paging:      cfg.Grid.Paging,
		PageSize:    cfg.Grid.PageSize,
		RowHeight:   cfg.Grid.RowHeight,
		Buffer:      cfg.Grid.Buffer,
		CharWidth:   cfg.Grid.CharWidth,
		Affordances: aff,
		Logger:      log,
	}
}

func saveLayout(e *env) error {
	if e.cfg.Grid.LayoutFile == "" {
		return nil
	}
	if err := config.SaveLayout(e.cfg.Grid.LayoutFile, e.svc.Engine.Layouts()); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}
