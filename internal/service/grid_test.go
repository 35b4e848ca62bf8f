package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stef-k/datagrid/internal/database"
	"github.com/stef-k/datagrid/internal/database/repository"
	"github.com/stef-k/datagrid/internal/grid"
	"github.com/stef-k/datagrid/internal/pipeline"
	"github.com/stef-k/datagrid/internal/testdata"
)

func newService(t *testing.T) (*GridService, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(ctx, db))

	svc, err := NewGridService(ctx, db, grid.Options{Editing: true, Paging: true, PageSize: 10, UndoLimit: 50})
	require.NoError(t, err)
	return svc, ctx
}

func storedNames(t *testing.T, ctx context.Context, svc *GridService) []string {
	t.Helper()
	recs, err := svc.Records.List(ctx, repository.RecordFilters{})
	require.NoError(t, err)
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestLoadEditSave(t *testing.T) {
	t.Parallel()
	svc, ctx := newService(t)

	n, err := testdata.Seed(ctx, testdata.Repos{Categories: svc.Categories, Records: svc.Records}, 25, 7)
	require.NoError(t, err)
	require.Equal(t, 25, n)

	require.NoError(t, svc.Load(ctx, repository.RecordFilters{}))
	require.Equal(t, 25, svc.Engine.Total())
	require.Len(t, svc.Engine.Display(), 10)
	require.Equal(t, 3, svc.Engine.PageCount())
	require.False(t, svc.Dirty())

	row := svc.Engine.Items()[0]
	ok, err := svc.Engine.BeginEdit(row, "quantity")
	require.NoError(t, err)
	require.True(t, ok)
	qty, _ := svc.Engine.Column("quantity")
	require.NoError(t, svc.Engine.SetPending(qty.ParseText("4242")))
	out, err := svc.Engine.CommitEdit()
	require.NoError(t, err)
	require.True(t, out.Valid())
	require.True(t, svc.Dirty())

	res, err := svc.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, SaveResult{Updated: 1}, res)
	require.False(t, svc.Dirty())

	got, err := svc.Records.Get(ctx, row.ID)
	require.NoError(t, err)
	require.EqualValues(t, 4242, got.Quantity)
	require.False(t, row.UpdatedAt.IsZero())
	require.True(t, got.UpdatedAt.Equal(row.UpdatedAt), "stored %v, grid %v", got.UpdatedAt, row.UpdatedAt)
	require.Zero(t, row.UpdatedAt.Nanosecond())

	// undo after save makes the row dirty again
	_, err = svc.Engine.Undo()
	require.NoError(t, err)
	require.True(t, svc.Dirty())
	_, err = svc.Save(ctx)
	require.NoError(t, err)
	got, err = svc.Records.Get(ctx, row.ID)
	require.NoError(t, err)
	require.NotEqualValues(t, 4242, got.Quantity)
}

func TestInvalidEditBlocksSave(t *testing.T) {
	t.Parallel()
	svc, ctx := newService(t)
	r, err := svc.NewRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, "Hardware", r.Category)

	_, err = svc.Engine.BeginEdit(r, "category")
	require.NoError(t, err)
	require.NoError(t, svc.Engine.SetPending("Spaceships"))
	out, err := svc.Engine.CommitEdit()
	require.NoError(t, err)
	require.False(t, out.Valid())

	_, err = svc.Save(ctx)
	require.ErrorIs(t, err, ErrInvalidGrid)

	svc.Engine.CancelEdit()
	res, err := svc.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	require.Equal(t, []string{"New item"}, storedNames(t, ctx, svc))
}

func TestDeleteAndUndoDelete(t *testing.T) {
	t.Parallel()
	svc, ctx := newService(t)
	for _, name := range []string{"a", "b", "c"} {
		r, err := svc.NewRecord(ctx)
		require.NoError(t, err)
		r.Name = name
	}
	res, err := svc.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, res.Inserted)

	b := svc.Engine.Items()[1]
	require.NoError(t, svc.DeleteRecord(b))
	res, err = svc.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Deleted)
	require.Equal(t, 1, res.Updated, "c moved up one position")
	require.Equal(t, []string{"a", "c"}, storedNames(t, ctx, svc))

	_, err = svc.Engine.Undo()
	require.NoError(t, err)
	res, err = svc.Save(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	require.Equal(t, []string{"a", "b", "c"}, storedNames(t, ctx, svc))
}

func TestImportCSV(t *testing.T) {
	t.Parallel()
	svc, ctx := newService(t)

	data := strings.Join([]string{
		"name,category,quantity,price,active,notes",
		"Desk,Office,2,249.50,yes,oak",
		"Mouse,Hardware,5,19.99,no",
		"Bad qty,Office,lots,1,yes",
		"Nowhere,Spaceships,1,1,yes",
		"desk,office,1,1,yes",
		"short,row",
		"Desk,Office,9,1,yes",
	}, "\n")

	res, err := svc.ImportCSV(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 1, res.Skipped)
	// lots, Spaceships, lower-case office (categories are case sensitive), short row
	require.Len(t, res.Errors, 4)
	require.Contains(t, res.Errors[0].Error(), "line 4 quantity")
	require.Contains(t, res.Errors[3].Error(), "line 7")

	require.Len(t, svc.Engine.History().Entries(), 1)
	require.Equal(t, "Import CSV", svc.Engine.History().UndoDescription())

	desk := svc.Engine.Items()[0]
	require.Equal(t, int64(24950), desk.PriceCents)
	require.NotNil(t, desk.Notes)

	require.NoError(t, svc.Engine.SetFilter("category", pipeline.Filter{Values: []string{"Hardware"}}))
	require.Len(t, svc.Engine.Display(), 1)

	_, err = svc.Engine.Undo()
	require.NoError(t, err)
	require.Empty(t, svc.Engine.Items())
	require.False(t, svc.Dirty())
}
