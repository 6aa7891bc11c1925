package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataRoot != "./data" || !cfg.GridUnload || cfg.CleanupIntervalSec != 60 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.VMapsEnabled || !cfg.MMapsEnabled {
		t.Fatalf("mesh engines default off: %+v", cfg)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level default = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	body := `
data_root: /srv/world/data
grid_unload: false
cleanup_interval_sec: 30
vmaps_enabled: true
mmaps_enabled: false
default_locale: 2
gamedata_db: /srv/world/gamedata.db
log:
  level: debug
  file: /var/log/terrain.log
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataRoot != "/srv/world/data" || cfg.GridUnload || cfg.CleanupIntervalSec != 30 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.VMapsEnabled || cfg.MMapsEnabled || cfg.DefaultLocale != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.GameDataDB != "/srv/world/gamedata.db" {
		t.Fatalf("gamedata_db = %q", cfg.GameDataDB)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/var/log/terrain.log" {
		t.Fatalf("log config = %+v", cfg.Log)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	if err := os.WriteFile(path, []byte("data_root: /data\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataRoot != "/data" {
		t.Fatalf("data_root = %q", cfg.DataRoot)
	}
	if cfg.CleanupIntervalSec != 60 || cfg.Log.Level != "info" {
		t.Fatalf("partial file lost defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		mutor func(*Config)
	}{
		{"empty data root", func(c *Config) { c.DataRoot = " " }},
		{"zero cleanup interval", func(c *Config) { c.CleanupIntervalSec = 0 }},
		{"negative locale", func(c *Config) { c.DefaultLocale = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tc := range cases {
		cfg := defaults()
		tc.mutor(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: Validate accepted %+v", tc.name, cfg)
		}
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	if err := os.WriteFile(path, []byte("cleanup_interval_sec: -5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an invalid config")
	}
}
