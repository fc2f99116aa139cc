package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration lets TOML carry human-readable durations ("50ms", "30m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Sim      SimConfig      `toml:"sim"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type SimConfig struct {
	TickRate            Duration `toml:"tick_rate"`
	LevelPath           string   `toml:"level_path"`
	ScriptsDir          string   `toml:"scripts_dir"`
	OpsBudgetPerTick    int      `toml:"ops_budget_per_tick"`
	GroundProbeInterval int      `toml:"ground_probe_interval"` // ticks between terrain probes per enemy
}

// DatabaseConfig configures the optional run-score store. An empty DSN
// disables persistence entirely.
type DatabaseConfig struct {
	DSN             string   `toml:"dsn"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "driftworld",
		},
		Sim: SimConfig{
			TickRate:            Duration{50 * time.Millisecond},
			LevelPath:           "data/levels/default.yaml",
			ScriptsDir:          "scripts",
			OpsBudgetPerTick:    2,
			GroundProbeInterval: 10,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration{30 * time.Minute},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
