package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.TickRate.Duration != 50*time.Millisecond {
		t.Fatalf("tick rate default = %s, want 50ms", cfg.Sim.TickRate.Duration)
	}
	if cfg.Database.DSN != "" {
		t.Fatal("database enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("logging defaults wrong: %+v", cfg.Logging)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatal("start time not stamped")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	content := `
[server]
name = "elsewhere"

[sim]
tick_rate = "200ms"
ops_budget_per_tick = 5

[database]
dsn = "postgres://localhost/x"
conn_max_lifetime = "5m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Name != "elsewhere" {
		t.Fatalf("name = %q", cfg.Server.Name)
	}
	if cfg.Sim.TickRate.Duration != 200*time.Millisecond {
		t.Fatalf("tick rate = %s, want 200ms", cfg.Sim.TickRate.Duration)
	}
	if cfg.Sim.OpsBudgetPerTick != 5 {
		t.Fatalf("ops budget = %d, want 5", cfg.Sim.OpsBudgetPerTick)
	}
	if cfg.Database.ConnMaxLifetime.Duration != 5*time.Minute {
		t.Fatalf("conn lifetime = %s, want 5m", cfg.Database.ConnMaxLifetime.Duration)
	}
	// Untouched sections keep their defaults.
	if cfg.Sim.LevelPath == "" {
		t.Fatal("level path default lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte("[sim]\ntick_rate = \"fast\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
