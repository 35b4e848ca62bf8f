package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stef-k/datagrid/internal/database/repository"
	"github.com/stef-k/datagrid/internal/testdata"
)

func TestCompactRenumbersPositions(t *testing.T) {
	t.Parallel()
	svc, ctx := newService(t)
	_, err := testdata.Seed(ctx, testdata.Repos{Categories: svc.Categories, Records: svc.Records}, 5, 3)
	require.NoError(t, err)

	recs, err := svc.Records.List(ctx, repository.RecordFilters{})
	require.NoError(t, err)
	require.NoError(t, svc.Records.Delete(ctx, recs[1].ID))

	m := &MaintenanceService{DB: svc.DB}
	moved, err := m.Compact(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, moved)

	after, err := svc.Records.List(ctx, repository.RecordFilters{})
	require.NoError(t, err)
	require.Len(t, after, 4)
	for i, r := range after {
		require.Equal(t, i, r.Position)
	}
	require.Equal(t, recs[2].ID, after[1].ID)

	moved, err = m.Compact(ctx)
	require.NoError(t, err)
	require.Zero(t, moved)
}

func TestResetRestoresDefaults(t *testing.T) {
	t.Parallel()
	svc, ctx := newService(t)
	_, err := testdata.Seed(ctx, testdata.Repos{Categories: svc.Categories, Records: svc.Records}, 5, 3)
	require.NoError(t, err)
	require.NoError(t, svc.Categories.Upsert(ctx, repository.Category{ID: "custom", Name: "Custom", SortOrder: 99}))

	m := &MaintenanceService{DB: svc.DB}
	require.NoError(t, m.Reset(ctx))

	n, err := svc.Records.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	names, err := svc.Categories.Names(ctx)
	require.NoError(t, err)
	require.NotContains(t, names, "Custom")
	require.Contains(t, names, "Hardware")

	require.ErrorIs(t, (&MaintenanceService{}).Reset(ctx), errNoDB)
}
