package testdata

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/stef-k/datagrid/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Categories *repository.CategoryRepo
	Records    *repository.RecordRepo
}

var sampleNames = map[string][]string{
	"Hardware": {"Keyboard", "Mouse", "Monitor", "Dock", "Headset", "Webcam"},
	"Software": {"IDE licence", "Backup suite", "Design tool", "VPN seat"},
	"Office":   {"Paper A4", "Stapler", "Whiteboard", "Desk lamp", "Chair"},
	"Food":     {"Coffee beans", "Tea", "Biscuits", "Fruit box"},
	"Services": {"Cleaning", "Courier", "Printer lease"},
	"Other":    {"Plant", "Umbrella"},
}

// Seed inserts n sample records when the table is empty. The same seed always
// produces the same rows.
func Seed(ctx context.Context, repos Repos, n int, seed int64) (int, error) {
	count, err := repos.Records.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	cats, err := repos.Categories.Names(ctx)
	if err != nil {
		return 0, err
	}
	if len(cats) == 0 {
		cats = []string{"Other"}
	}
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		cat := cats[rng.Intn(len(cats))]
		names := sampleNames[cat]
		if len(names) == 0 {
			names = sampleNames["Other"]
		}
		rec := repository.Record{
			ID:         uuid.NewString(),
			Position:   i,
			Name:       fmt.Sprintf("%s #%d", names[rng.Intn(len(names))], i+1),
			Category:   cat,
			Quantity:   int64(rng.Intn(50)),
			PriceCents: int64(rng.Intn(50000) + 99),
			Active:     rng.Intn(10) < 8,
		}
		if rng.Intn(4) == 0 {
			note := "reorder soon"
			rec.Notes = &note
		}
		if err := repos.Records.Insert(ctx, rec); err != nil {
			return i, err
		}
	}
	return n, nil
}
