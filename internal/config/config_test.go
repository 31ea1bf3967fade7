package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/sheep/internal/domain"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sheep.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHEEP_CONFIG", "")
	t.Setenv("SHEEP_ADDR", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SHEEP_ADDR", "")
	p := write(t, `
server:
  addr: ":9090"
  log_level: debug
game:
  removal_delay: 150ms
  solver_nodes: 5000
  field:
    width: 480
    height: 480
    tile_size: 48
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sheep", cfg.Server.Namespace, "untouched keys keep defaults")
	assert.Equal(t, 150*time.Millisecond, cfg.Game.RemovalDelay)
	assert.Equal(t, 30*time.Minute, cfg.Game.SessionTTL)
	assert.Equal(t, 5000, cfg.Game.SolverNodes)
	assert.Equal(t, domain.Field{Width: 480, Height: 480, TileSize: 48}, cfg.Game.Field)
}

func TestLoadFromEnv(t *testing.T) {
	p := write(t, "game:\n  session_ttl: 1m\n")
	t.Setenv("SHEEP_CONFIG", p)
	t.Setenv("SHEEP_ADDR", "127.0.0.1:7000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Game.SessionTTL)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "server: [",
		"odd tile":       "game:\n  field: {width: 100, height: 100, tile_size: 25}\n",
		"tiny field":     "game:\n  field: {width: 10, height: 100, tile_size: 20}\n",
		"negative delay": "game:\n  removal_delay: -1s\n",
		"log level":      "server:\n  log_level: loud\n",
		"solver nodes":   "game:\n  solver_nodes: -5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, body))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
