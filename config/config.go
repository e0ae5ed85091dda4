// Package config loads sheetdb configuration from a YAML file, an optional
// .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/maruel/sheetdb/table"
)

// Source kinds.
const (
	KindJSONL    = "jsonl"
	KindCSV      = "csv"
	KindPostgres = "postgres"
	KindMemory   = "memory"
)

// Config is the full sheetdb configuration.
type Config struct {
	Source    Source    `yaml:"source"`
	Table     Table     `yaml:"table"`
	Log       Log       `yaml:"log"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

// Source selects the sheet backing the table.
type Source struct {
	// Kind is one of jsonl, csv, postgres or memory.
	Kind string `yaml:"kind"`
	// Path is the sheet file for jsonl and csv. A relative path is resolved
	// against the configuration file's directory.
	Path string `yaml:"path,omitempty"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn,omitempty"`
	// Table is the PostgreSQL table holding the sheet.
	Table string `yaml:"table,omitempty"`
}

// Table holds the table loading options.
type Table struct {
	// DuplicateFields is "first" or "reject".
	DuplicateFields string `yaml:"duplicate_fields"`
	// Normalize is "none", "text" or "numeric".
	Normalize string `yaml:"normalize"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RateLimit throttles sheet operations. PerSecond 0 disables throttling.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Source:    Source{Kind: KindJSONL},
		Table:     Table{DuplicateFields: "first", Normalize: "none"},
		Log:       Log{Level: "info", Format: "text"},
		RateLimit: RateLimit{Burst: 1},
	}
}

// envVars maps environment variables to the fields they override.
func (c *Config) envVars() map[string]*string {
	return map[string]*string{
		"SHEETDB_SOURCE_KIND":  &c.Source.Kind,
		"SHEETDB_SOURCE_PATH":  &c.Source.Path,
		"SHEETDB_DSN":          &c.Source.DSN,
		"SHEETDB_SOURCE_TABLE": &c.Source.Table,
		"SHEETDB_NORMALIZE":    &c.Table.Normalize,
		"SHEETDB_LOG_LEVEL":    &c.Log.Level,
		"SHEETDB_LOG_FORMAT":   &c.Log.Format,
	}
}

// Load reads the YAML file at path on top of the defaults, then applies the
// .env file found next to it and finally the process environment. An empty
// path skips the YAML file and looks for .env in the working directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the operator
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	for name, field := range cfg.envVars() {
		if v := env[name]; v != "" {
			*field = v
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	if cfg.Source.Path != "" && !filepath.IsAbs(cfg.Source.Path) && path != "" {
		cfg.Source.Path = filepath.Join(dir, cfg.Source.Path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case KindJSONL, KindCSV:
		if c.Source.Path == "" {
			return fmt.Errorf("source: path is required for %s", c.Source.Kind)
		}
	case KindPostgres:
		if c.Source.DSN == "" {
			return errors.New("source: dsn is required for postgres")
		}
		if c.Source.Table == "" {
			return errors.New("source: table is required for postgres")
		}
	case KindMemory:
	default:
		return fmt.Errorf("source: unknown kind %q", c.Source.Kind)
	}
	if _, err := c.TableOptions(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", c.Log.Format)
	}
	if c.RateLimit.PerSecond < 0 {
		return errors.New("rate_limit: per_second must be non-negative")
	}
	if c.RateLimit.Burst < 0 {
		return errors.New("rate_limit: burst must be non-negative")
	}
	return nil
}

// TableOptions converts the table section into table.Options. The logger is
// left for the caller to set.
func (c *Config) TableOptions() (*table.Options, error) {
	dup, err := table.ParseDuplicatePolicy(c.Table.DuplicateFields)
	if err != nil {
		return nil, err
	}
	norm, err := table.ParseNormalization(c.Table.Normalize)
	if err != nil {
		return nil, err
	}
	return &table.Options{Duplicates: dup, Normalize: norm}, nil
}

// Limiter returns the rate limiter for sheet operations, or nil when
// throttling is disabled.
func (c *Config) Limiter() *rate.Limiter {
	if c.RateLimit.PerSecond == 0 {
		return nil
	}
	burst := max(c.RateLimit.Burst, 1)
	return rate.NewLimiter(rate.Limit(c.RateLimit.PerSecond), burst)
}
