package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/stef-k/datagrid/internal/database/repository"
)

// DefaultCategories are seeded into an empty database.
var DefaultCategories = []string{
	"Hardware",
	"Software",
	"Office",
	"Food",
	"Services",
	"Other",
}

// SeedDefaults ensures baseline categories exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for idx, name := range DefaultCategories {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+name)).String()
		if err := catRepo.Upsert(ctx, repository.Category{ID: id, Name: name, SortOrder: idx}); err != nil {
			return err
		}
	}
	return nil
}
