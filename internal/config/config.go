package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"svw.info/sheep/internal/domain"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Game   GameConfig   `yaml:"game"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
	// Namespace prefixes every Prometheus metric.
	Namespace string `yaml:"metrics_namespace"`
}

type GameConfig struct {
	RemovalDelay time.Duration `yaml:"removal_delay"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	Field        domain.Field  `yaml:"field"`
	// SolverNodes caps a single solve request; 0 keeps the solver default.
	SolverNodes int `yaml:"solver_nodes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", LogLevel: "info", Namespace: "sheep"},
		Game: GameConfig{
			RemovalDelay: 300 * time.Millisecond,
			SessionTTL:   30 * time.Minute,
			Field:        domain.DefaultField,
			SolverNodes:  200000,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to
// $SHEEP_CONFIG; with neither set the defaults are returned as is.
// $SHEEP_ADDR fills in the listen address when the file leaves it empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("SHEEP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Server.Addr = ""
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = envOr("SHEEP_ADDR", ":8080")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c *Config) Validate() error {
	f := c.Game.Field
	if f.TileSize <= 0 || f.TileSize%2 != 0 {
		return fmt.Errorf("field.tile_size must be a positive even number, got %d", f.TileSize)
	}
	if f.Width < f.TileSize || f.Height < f.TileSize {
		return fmt.Errorf("field %dx%d is smaller than one tile", f.Width, f.Height)
	}
	if c.Game.RemovalDelay < 0 {
		return fmt.Errorf("removal_delay must not be negative")
	}
	if c.Game.SolverNodes < 0 {
		return fmt.Errorf("solver_nodes must not be negative")
	}
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.Server.LogLevel)
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
