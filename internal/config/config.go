package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Grid     GridConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// GridConfig holds engine settings.
type GridConfig struct {
	PageSize      int     `mapstructure:"page_size"`
	Paging        bool    `mapstructure:"paging"`
	UndoLimit     int     `mapstructure:"undo_limit"`
	RowHeight     float64 `mapstructure:"row_height"`
	Buffer        int     `mapstructure:"buffer"`
	RequireRow    bool    `mapstructure:"require_row"`
	MultiSort     bool    `mapstructure:"multi_sort"`
	Editing       bool    `mapstructure:"editing"`
	CharWidth     float64 `mapstructure:"char_width"`
	HeaderPadding float64 `mapstructure:"header_padding"`
	LayoutFile    string  `mapstructure:"layout_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	File  string
}

// Path returns the config file location. DATAGRID_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("DATAGRID_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "datagrid", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix DATAGRID_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "datagrid", "datagrid.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("grid.page_size", 50)
	v.SetDefault("grid.paging", false)
	v.SetDefault("grid.undo_limit", 200)
	v.SetDefault("grid.row_height", 1)
	v.SetDefault("grid.buffer", 5)
	v.SetDefault("grid.require_row", false)
	v.SetDefault("grid.multi_sort", false)
	v.SetDefault("grid.editing", true)
	v.SetDefault("grid.char_width", 1)
	v.SetDefault("grid.header_padding", 2)
	v.SetDefault("grid.layout_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("DATAGRID_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "datagrid"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DATAGRID")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Grid.PageSize <= 0 {
		return Config{}, fmt.Errorf("grid.page_size must be positive, got %d", c.Grid.PageSize)
	}
	if c.Grid.RowHeight <= 0 {
		return Config{}, fmt.Errorf("grid.row_height must be positive, got %g", c.Grid.RowHeight)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("grid.page_size", cfg.Grid.PageSize)
	v.Set("grid.paging", cfg.Grid.Paging)
	v.Set("grid.undo_limit", cfg.Grid.UndoLimit)
	v.Set("grid.row_height", cfg.Grid.RowHeight)
	v.Set("grid.buffer", cfg.Grid.Buffer)
	v.Set("grid.require_row", cfg.Grid.RequireRow)
	v.Set("grid.multi_sort", cfg.Grid.MultiSort)
	v.Set("grid.editing", cfg.Grid.Editing)
	v.Set("grid.char_width", cfg.Grid.CharWidth)
	v.Set("grid.header_padding", cfg.Grid.HeaderPadding)
	v.Set("grid.layout_file", cfg.Grid.LayoutFile)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level. Unknown names mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
