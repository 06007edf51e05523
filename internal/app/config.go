package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gadsdencode/roboscan/internal/compare"
	"github.com/gadsdencode/roboscan/internal/scanner"
	"github.com/gadsdencode/roboscan/internal/score"
	"github.com/gadsdencode/roboscan/internal/webclient"
)

// Config aggregates the per-component configuration. Everything has a
// working default so a bare binary runs without a config file; a YAML
// file overrides selectively.
type Config struct {
	// ListenAddr is the HTTP API bind address.
	ListenAddr string `yaml:"listen_addr"`

	// HistoryPath is the SQLite scan-history database path.
	HistoryPath string `yaml:"history_path"`

	// RedisAddr enables the shared Redis cooldown store when non-empty;
	// otherwise cooldowns are tracked in process memory.
	RedisAddr string `yaml:"redis_addr"`

	// CooldownWindow is the anti-gaming window during which a repeat scan
	// of the same registrable domain earns no reward.
	CooldownWindow time.Duration `yaml:"cooldown_window"`

	WebClientCfg webclient.Config `yaml:"webclient"`
	ScannerCfg   scanner.Config   `yaml:"scanner"`
	ScoreCfg     score.Config     `yaml:"score"`
	CompareCfg   compare.Config   `yaml:"compare"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8080",
		HistoryPath:    "roboscan.db",
		RedisAddr:      "",
		CooldownWindow: 24 * time.Hour,
		WebClientCfg: webclient.Config{
			Timeout: 8 * time.Second,
		},
		ScannerCfg: scanner.DefaultConfig(),
		ScoreCfg:   score.DefaultConfig(),
		CompareCfg: compare.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
