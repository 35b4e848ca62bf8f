package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/stef-k/datagrid/internal/database/repository"
)

const categoriesFile = "categories.json"

// CategoriesPath is where category lists survive a store reset. DATAGRID_PREFS_DIR
// overrides the user config directory.
func CategoriesPath() (string, error) {
	dir := os.Getenv("DATAGRID_PREFS_DIR")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "datagrid")
	}
	return filepath.Join(dir, categoriesFile), nil
}

// SaveCategories writes cats atomically.
func SaveCategories(path string, cats []repository.Category) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadCategories reads a saved list. A missing file is an empty list.
func LoadCategories(path string) ([]repository.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cats []repository.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
