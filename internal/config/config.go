// Package config loads the terrain engine configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataRoot is the directory holding maps/, vmaps/ and mmaps/.
	DataRoot string `yaml:"data_root"`

	// GridUnload gates whole-map cache unloading; when false a map's tile
	// cache stays resident for the process lifetime.
	GridUnload bool `yaml:"grid_unload"`

	// CleanupIntervalSec is the sweep cadence for evicting unreferenced
	// tiles.
	CleanupIntervalSec int `yaml:"cleanup_interval_sec"`

	// VMapsEnabled / MMapsEnabled select the real mesh engines; when false
	// the engine runs on grid data alone.
	VMapsEnabled bool `yaml:"vmaps_enabled"`
	MMapsEnabled bool `yaml:"mmaps_enabled"`

	// DefaultLocale indexes localized names in the game-data tables.
	DefaultLocale int `yaml:"default_locale"`

	// GameDataDB is the sqlite database holding the static lookup tables;
	// empty means the embedding server supplies a store directly.
	GameDataDB string `yaml:"gamedata_db"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads the config at path; an empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("terrain.yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("terrain.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		DataRoot:           "./data",
		GridUnload:         true,
		CleanupIntervalSec: 60,
		VMapsEnabled:       true,
		MMapsEnabled:       true,
		DefaultLocale:      0,
		Log:                LogConfig{Level: "info"},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataRoot) == "" {
		return fmt.Errorf("data_root must not be empty")
	}
	if c.CleanupIntervalSec <= 0 {
		return fmt.Errorf("cleanup_interval_sec must be > 0")
	}
	if c.DefaultLocale < 0 {
		return fmt.Errorf("default_locale must be >= 0")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q not one of debug/info/warn/error", c.Log.Level)
	}
	return nil
}
