// Package config loads navigator settings from a TOML file, with
// environment overrides on top.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/nathoo/worldnav/engine/resolve"
	"github.com/nathoo/worldnav/types"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all user-facing configuration.
type Config struct {
	Navigator NavigatorConfig `toml:"navigator"`
	Scale     ScaleConfig     `toml:"scale"`
	World     WorldConfig     `toml:"world"`
	Store     StoreConfig     `toml:"store"`
	Log       LogConfig       `toml:"log"`
}

type NavigatorConfig struct {
	Enabled        bool `toml:"enabled"`
	StickyLocation bool `toml:"sticky_location"`
	AutoConfirm    bool `toml:"auto_confirm"`
}

type ScaleConfig struct {
	KMPerUnit     float64 `toml:"km_per_unit"`
	MaxDistanceKM float64 `toml:"max_distance_km"`
}

type WorldConfig struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

type StoreConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	File        string `toml:"file"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	scale := resolve.DefaultScale()
	return &Config{
		Navigator: NavigatorConfig{Enabled: true},
		Scale:     ScaleConfig{KMPerUnit: scale.KMPerUnit, MaxDistanceKM: scale.MaxDistanceKM},
		Store:     StoreConfig{Driver: DriverSQLite, Path: "data/sessions.db"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error. Environment overrides are applied
// in both cases.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies NAVIGATOR_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NAVIGATOR_WORLD"); v != "" {
		c.World.File = v
	}
	if v := os.Getenv("NAVIGATOR_STORE"); v != "" {
		if v == DriverMemory {
			c.Store.Driver = DriverMemory
		} else {
			c.Store.Driver = DriverSQLite
			c.Store.Path = v
		}
	}
	if v := os.Getenv("NAVIGATOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	if c.Scale.KMPerUnit <= 0 {
		return fmt.Errorf("scale.km_per_unit must be positive, got %v", c.Scale.KMPerUnit)
	}
	if c.Scale.MaxDistanceKM < 0 {
		return fmt.Errorf("scale.max_distance_km must not be negative, got %v", c.Scale.MaxDistanceKM)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Settings returns the navigator switches.
func (c *Config) Settings() types.Settings {
	return types.Settings{
		Enabled:        c.Navigator.Enabled,
		StickyLocation: c.Navigator.StickyLocation,
		AutoConfirm:    c.Navigator.AutoConfirm,
	}
}

// ResolverScale returns the configured display scale.
func (c *Config) ResolverScale() resolve.Scale {
	return resolve.Scale{KMPerUnit: c.Scale.KMPerUnit, MaxDistanceKM: c.Scale.MaxDistanceKM}
}
