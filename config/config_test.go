package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "controller:\n  interval_seconds: 5\n"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Controller.IntervalSeconds)
	assert.Equal(t, 3, cfg.Controller.RequiredCount)
	assert.Equal(t, 0.0002, cfg.Signal.VolFloor)
	assert.Equal(t, 4.0, cfg.Signal.ZClamp)
	assert.Equal(t, 0.25, cfg.Costs.FeeRate)
	assert.Equal(t, 0.05, cfg.Gates.SanityTolerance)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "data/decisions.jsonl", cfg.Journal.DecisionPath)

	require.Len(t, cfg.Symbols, 2)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.TrackedSymbols())
	assert.Equal(t, "btcusdt", cfg.FeedStreams()["BTC"])
	assert.Equal(t, "ethereum-up-or-down", cfg.SlugPrefixes()["ETH"])
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
controller:
  interval_seconds: 30
  required_count: 2
  min_edge: 0.05
signal:
  vol_floor: 0.001
  z_clamp: 3
symbols:
  - symbol: SOL
    feed_stream: solusdt
    slug_prefix: solana-up-or-down
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Controller.RequiredCount)
	assert.Equal(t, 0.05, cfg.Controller.MinEdge)
	assert.Equal(t, 0.001, cfg.Signal.VolFloor)
	assert.Equal(t, 3.0, cfg.Signal.ZClamp)
	assert.Equal(t, []string{"SOL"}, cfg.TrackedSymbols())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileAppliesEnvOverrides(t *testing.T) {
	t.Setenv("GAMMA_BASE", "http://localhost:9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", cfg.API.GammaBase)
}

func TestLoadUnreadableFileStillErrors(t *testing.T) {
	// Un path que existe pero no es un archivo regular no debe caer en el
	// fallback silencioso.
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("GAMMA_BASE", "http://localhost:8080")

	cfg, err := Load(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://localhost:8080", cfg.API.GammaBase)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "15s", cfg.CycleInterval().String())
	assert.Equal(t, "10s", cfg.ResolveTimeout().String())
	assert.Zero(t, cfg.RunDuration())
}
