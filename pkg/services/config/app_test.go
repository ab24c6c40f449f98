package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "alert-atlas.db", cfg.DbPath)
	assert.Empty(t, cfg.RegionsPath)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "month", cfg.DefaultGranularity)
	assert.Equal(t, 6, cfg.DefaultHorizon)
	assert.Equal(t, 8, cfg.MinHistory)
	assert.Equal(t, 4.0, cfg.MigrationWatchThreshold)
	assert.Equal(t, 5.0, cfg.MigrationSurgeThreshold)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ALERT_ATLAS_SERVER_PORT", "9090")
	t.Setenv("ALERT_ATLAS_DB_PATH", "/data/alerts.db")
	t.Setenv("ALERT_ATLAS_CACHE_TTL", "10m")
	t.Setenv("ALERT_ATLAS_DEFAULT_GRANULARITY", "week")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "/data/alerts.db", cfg.DbPath)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "week", cfg.DefaultGranularity)
}

func TestLoad_InvalidGranularity(t *testing.T) {
	t.Setenv("ALERT_ATLAS_DEFAULT_GRANULARITY", "quarter")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_ThresholdOrder(t *testing.T) {
	t.Setenv("ALERT_ATLAS_MIGRATION_WATCH_THRESHOLD", "5.5")
	t.Setenv("ALERT_ATLAS_MIGRATION_SURGE_THRESHOLD", "5.0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surge threshold")
}

func TestLoad_InvalidMinHistory(t *testing.T) {
	t.Setenv("ALERT_ATLAS_MIN_HISTORY", "1")

	_, err := Load()
	require.Error(t, err)
}
