package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/stef-k/datagrid/internal/column"
)

// ColumnLayout is one [[column]] block of a layout file.
type ColumnLayout struct {
	ID       string   `toml:"id"`
	Policy   string   `toml:"policy"`
	Width    *float64 `toml:"width"`
	MinWidth *float64 `toml:"min_width"`
	MaxWidth *float64 `toml:"max_width"`
	Visible  *bool    `toml:"visible"`
}

// Layout is a saved column layout preset.
type Layout struct {
	Columns []ColumnLayout `toml:"column"`
}

// LoadLayout reads a layout file. A missing file yields an empty layout.
func LoadLayout(path string) (Layout, error) {
	var l Layout
	if path == "" {
		return l, nil
	}
	if _, err := toml.DecodeFile(path, &l); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Layout{}, nil
		}
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	for i, c := range l.Columns {
		if c.ID == "" {
			return Layout{}, fmt.Errorf("layout %s: column %d has no id", path, i+1)
		}
		if c.Policy != "" {
			if _, err := column.ParsePolicy(c.Policy); err != nil {
				return Layout{}, fmt.Errorf("layout %s: column %s: %w", path, c.ID, err)
			}
		}
	}
	return l, nil
}

// ApplyLayout copies the preset onto matching columns and returns the ids it did not
// find.
func ApplyLayout(l Layout, cols []*column.Layout) (unknown []string) {
	byID := make(map[string]*column.Layout, len(cols))
	for _, c := range cols {
		byID[c.ID] = c
	}
	for _, p := range l.Columns {
		c, ok := byID[p.ID]
		if !ok {
			unknown = append(unknown, p.ID)
			continue
		}
		if p.Policy != "" {
			c.Policy, _ = column.ParsePolicy(p.Policy)
			c.ForgetMeasure()
		}
		if p.Width != nil {
			c.Width = *p.Width
		}
		if p.MinWidth != nil {
			c.MinWidth = *p.MinWidth
		}
		if p.MaxWidth != nil {
			c.MaxWidth = *p.MaxWidth
		}
		if p.Visible != nil {
			c.Visible = *p.Visible
		}
	}
	return unknown
}

// SaveLayout writes the current column sizing as a preset.
func SaveLayout(path string, cols []*column.Layout) error {
	var l Layout
	for _, c := range cols {
		width, minW, maxW, visible := c.Width, c.MinWidth, c.MaxWidth, c.Visible
		l.Columns = append(l.Columns, ColumnLayout{
			ID:       c.ID,
			Policy:   c.Policy.String(),
			Width:    &width,
			MinWidth: &minW,
			MaxWidth: &maxW,
			Visible:  &visible,
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create layout: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}
