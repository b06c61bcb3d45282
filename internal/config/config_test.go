package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeConfig(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	// Run from a directory without a config.yaml so defaults apply.
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10, cfg.Parking.Capacity)
	assert.Equal(t, "SPOT-", cfg.Parking.SpotPrefix)
	assert.Equal(t, 1.2, cfg.Parking.ReservationPremium)
	assert.Equal(t, time.Minute, cfg.Worker.ExpiryInterval)
	assert.Equal(t, "parking-allocator", cfg.Telemetry.ServiceName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PARKING_SERVER_PORT", "9090")
	t.Setenv("PARKING_PARKING_CAPACITY", "25")
	t.Setenv("PARKING_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 25, cfg.Parking.Capacity)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  port: "7070"
parking:
  capacity: 3
  spot_prefix: "BAY-"
  reservation_premium: 1.5
`)
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Parking.Capacity)
	assert.Equal(t, "BAY-", cfg.Parking.SpotPrefix)
	assert.Equal(t, 1.5, cfg.Parking.ReservationPremium)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Minute, cfg.Worker.ExpiryInterval)
}
