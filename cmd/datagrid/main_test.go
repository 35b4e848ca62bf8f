package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stef-k/datagrid/internal/config"
	"github.com/stef-k/datagrid/internal/database"
	"github.com/stef-k/datagrid/internal/service"
	"github.com/stef-k/datagrid/internal/testdata"
)

func TestRunCheck(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "check.db")
	require.NoError(t, database.RunMigrations(dbPath, "../../internal/database/migrations"))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.SeedDefaults(ctx, db))

	cfg := config.Config{Grid: config.GridConfig{PageSize: 50, RowHeight: 1, Buffer: 2, Editing: true, UndoLimit: 20}}
	svc, err := service.NewGridService(ctx, db, options(cfg, nil))
	require.NoError(t, err)
	_, err = testdata.Seed(ctx, testdata.Repos{Categories: svc.Categories, Records: svc.Records}, 75, 7)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runCheck(ctx, &out, svc, 120, 20))
	s := out.String()
	require.Contains(t, s, "records:     75")
	require.Contains(t, s, "virtualized=true")
	require.Contains(t, s, "price desc, page 2/8 (10 rows)")
	require.Contains(t, s, "(Edit Qty)")
	require.Contains(t, s, "undo:")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Config{Grid: config.GridConfig{PageSize: 25, Paging: true, HeaderPadding: 4, CharWidth: 1.5}}
	o := options(cfg, nil)
	require.Equal(t, 25, o.PageSize)
	require.True(t, o.Paging)
	require.Equal(t, 4.0, o.Affordances.Padding)
	require.Equal(t, 1.5, o.CharWidth)
}
