// Package config loads the dashboard configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"salesdash/internal/engine"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server    Server    `yaml:"server"`
	Dataset   Dataset   `yaml:"dataset"`
	Dashboard Dashboard `yaml:"dashboard"`
	Logging   Logging   `yaml:"logging"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// Dataset locates the sales table.
type Dataset struct {
	Path     string `yaml:"path"`
	Sheet    string `yaml:"sheet"`
	SkipRows int    `yaml:"skip_rows"`
	Columns  string `yaml:"columns"`
	MaxRows  int    `yaml:"max_rows"`
	// Watch reloads the dataset when the file changes on disk.
	Watch    bool   `yaml:"watch"`
}

type Dashboard struct {
	Title     string `yaml:"title"`
	// HourOrder is "value" (ascending sales) or "hour" (chronological).
	HourOrder string `yaml:"hour_order"`
	// Theme is the initial page theme, "light" or "dark".
	Theme     string `yaml:"theme"`
}

type Logging struct {
	// Level is one of debug, info, warn, error, off.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	lo := engine.DefaultLoadOptions()
	return &Config{
		Server: Server{Addr: ":8080"},
		Dataset: Dataset{
			Path:     "supermarket_sales.xlsx",
			Sheet:    lo.Sheet,
			SkipRows: lo.SkipRows,
			Columns:  lo.Columns,
			MaxRows:  lo.MaxRows,
		},
		Dashboard: Dashboard{
			Title:     "Sales Dashboard",
			HourOrder: string(engine.HourOrderValue),
			Theme:     "light",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads a YAML file on top of the defaults. ${VAR} references are
// expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Dataset.Path == "" {
		return fmt.Errorf("%w: dataset.path is required", ErrInvalidConfig)
	}
	if c.Dataset.SkipRows < 0 || c.Dataset.MaxRows < 0 {
		return fmt.Errorf("%w: dataset.skip_rows and dataset.max_rows must not be negative", ErrInvalidConfig)
	}
	if _, err := engine.ParseHourOrder(c.Dashboard.HourOrder); err != nil {
		return fmt.Errorf("%w: dashboard.hour_order: %v", ErrInvalidConfig, err)
	}
	switch c.Dashboard.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("%w: dashboard.theme must be light or dark, got %q", ErrInvalidConfig, c.Dashboard.Theme)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// LoadOptions converts the dataset section for the loader.
func (c *Config) LoadOptions() engine.LoadOptions {
	return engine.LoadOptions{
		Sheet:    c.Dataset.Sheet,
		SkipRows: c.Dataset.SkipRows,
		Columns:  c.Dataset.Columns,
		MaxRows:  c.Dataset.MaxRows,
	}
}

// HourOrder returns the validated hour order.
func (c *Config) HourOrder() engine.HourOrder {
	o, _ := engine.ParseHourOrder(c.Dashboard.HourOrder)
	return o
}
