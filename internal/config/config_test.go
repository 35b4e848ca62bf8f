package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stef-k/datagrid/internal/column"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATAGRID_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("DATAGRID_GRID_PAGE_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Grid.PageSize)
	require.Equal(t, 200, cfg.Grid.UndoLimit)
	require.True(t, cfg.Grid.Editing)
	require.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	t.Setenv("DATAGRID_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "grid.db")
	cfg.Grid.Paging = true
	cfg.Grid.MultiSort = true
	cfg.Log.Level = "debug"
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg.Database.Path, got.Database.Path)
	require.True(t, got.Grid.Paging)
	require.True(t, got.Grid.MultiSort)
	require.Equal(t, slog.LevelDebug, got.Log.SlogLevel())
}

func TestLoadRejectsBadPageSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grid]\npage_size = 0\n"), 0o644))
	t.Setenv("DATAGRID_CONFIG", path)
	_, err := Load()
	require.Error(t, err)
}

func TestLayoutRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[column]]
id = "name"
policy = "fill"
width = 2
min_width = 40

[[column]]
id = "notes"
visible = false

[[column]]
id = "ghost"
width = 10
`), 0o644))

	l, err := LoadLayout(path)
	require.NoError(t, err)
	require.Len(t, l.Columns, 3)

	name := &column.Layout{ID: "name", Policy: column.Fixed, Width: 100, Visible: true}
	notes := &column.Layout{ID: "notes", Policy: column.Fixed, Width: 80, Visible: true}
	unknown := ApplyLayout(l, []*column.Layout{name, notes})
	require.Equal(t, []string{"ghost"}, unknown)
	require.Equal(t, column.Fill, name.Policy)
	require.Equal(t, 2.0, name.Width)
	require.Equal(t, 40.0, name.MinWidth)
	require.False(t, notes.Visible)
	require.Equal(t, 80.0, notes.Width)

	out := filepath.Join(dir, "saved.toml")
	require.NoError(t, SaveLayout(out, []*column.Layout{name, notes}))
	again, err := LoadLayout(out)
	require.NoError(t, err)
	require.Len(t, again.Columns, 2)
	require.Equal(t, "fill", again.Columns[0].Policy)
	require.False(t, *again.Columns[1].Visible)
}

func TestLoadLayoutErrors(t *testing.T) {
	l, err := LoadLayout(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	require.Empty(t, l.Columns)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[column]]\nid = \"x\"\npolicy = \"stretchy\"\n"), 0o644))
	_, err = LoadLayout(path)
	require.ErrorIs(t, err, column.ErrUnknownPolicy)
}
