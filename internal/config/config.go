package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Director DirectorConfig `mapstructure:"director"`
	Query    QueryConfig    `mapstructure:"query"`
	Watch    WatchConfig    `mapstructure:"watch"`
	UI       UIConfig       `mapstructure:"ui"`
	Prefs    PrefsConfig    `mapstructure:"prefs"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	Migrations string `mapstructure:"migrations"`
}

// DirectorConfig shapes the transaction list.
type DirectorConfig struct {
	// RowType is "compact" or "detailed".
	RowType          string `mapstructure:"row_type"`
	HeaderTitle      string `mapstructure:"header_title"`
	FooterTitle      string `mapstructure:"footer_title"`
	AutoRegister     bool   `mapstructure:"auto_register"`
	PrototypeHeights bool   `mapstructure:"prototype_heights"`
}

// QueryConfig holds the initial live query settings.
type QueryConfig struct {
	Filter string `mapstructure:"filter"`
	// GroupBy is "" or "category".
	GroupBy string `mapstructure:"group_by"`
}

// WatchConfig controls reloading on writes from other processes.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Throttle time.Duration `mapstructure:"throttle"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string `mapstructure:"date_format"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string `mapstructure:"timezone"`
	LogPath        string `mapstructure:"log_path"`
}

// PrefsConfig locates the saved filter store.
type PrefsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Location resolves UI.Timezone, falling back to time.Local.
func (c UIConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "datatable")
}

// Path returns the config file location: DATATABLE_CONFIG when set,
// otherwise ~/.config/datatable/config.toml.
func Path() string {
	if p := os.Getenv("DATATABLE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "datatable", "config.toml")
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(dataDir(), "datatable.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("director.row_type", "compact")
	v.SetDefault("director.header_title", "Transactions")
	v.SetDefault("director.footer_title", "")
	v.SetDefault("director.auto_register", true)
	v.SetDefault("director.prototype_heights", false)
	v.SetDefault("query.filter", "")
	v.SetDefault("query.group_by", "")
	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.throttle", 250*time.Millisecond)
	v.SetDefault("ui.date_format", "02/01")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.timezone", "Australia/Melbourne")
	v.SetDefault("ui.log_path", filepath.Join(dataDir(), "datatable.log"))
	v.SetDefault("prefs.dir", filepath.Join(dataDir(), "prefs"))

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("DATATABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from file and env. Env var overrides use prefix
// DATATABLE_, e.g. DATATABLE_DATABASE_PATH. A missing config file is not
// an error.
func Load() (Config, error) {
	return LoadWith(nil)
}

// LoadWith is Load with caller overrides applied last, keyed like the
// config file ("database.path").
func LoadWith(overrides map[string]any) (Config, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	switch c.Query.GroupBy {
	case "", "category":
	default:
		return Config{}, fmt.Errorf("query.group_by: unknown grouping %q", c.Query.GroupBy)
	}
	return c, nil
}

// Save writes the non-derived settings to Path(), creating the directory
// if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("director.row_type", cfg.Director.RowType)
	v.Set("director.header_title", cfg.Director.HeaderTitle)
	v.Set("director.footer_title", cfg.Director.FooterTitle)
	v.Set("director.auto_register", cfg.Director.AutoRegister)
	v.Set("director.prototype_heights", cfg.Director.PrototypeHeights)
	v.Set("query.filter", cfg.Query.Filter)
	v.Set("query.group_by", cfg.Query.GroupBy)
	v.Set("watch.enabled", cfg.Watch.Enabled)
	v.Set("watch.throttle", cfg.Watch.Throttle.String())
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.log_path", cfg.UI.LogPath)
	v.Set("prefs.dir", cfg.Prefs.Dir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
