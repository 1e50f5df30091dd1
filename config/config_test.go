package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "fincast", cfg.MongoDB.Database)
	assert.Equal(t, "pacific", cfg.Notices.DefaultRegion)
	assert.Equal(t, "config/species.yaml", cfg.Species.CatalogPath)
	assert.Equal(t, 900, cfg.Polling.SampleInterval)
	assert.Equal(t, 300, cfg.Polling.EvaluateInterval)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("NOTICES_DEFAULT_REGION", "atlantic")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_LAT", "48.4284")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Cache.TTL)
	assert.Equal(t, "atlantic", cfg.Notices.DefaultRegion)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.InDelta(t, 48.4284, cfg.GeoIP.DefaultLat, 0.0001)
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.Weather.Timeout = 15
	cfg.Tide.Timeout = 30
	cfg.Polling.SampleInterval = 900
	cfg.Polling.EvaluateInterval = 300
	cfg.Polling.StaleThreshold = 60
	cfg.Cache.TTL = 1800

	assert.Equal(t, 15*time.Second, cfg.WeatherTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.TideTimeoutDuration())
	assert.Equal(t, 15*time.Minute, cfg.SampleIntervalDuration())
	assert.Equal(t, 5*time.Minute, cfg.EvaluateIntervalDuration())
	assert.Equal(t, time.Hour, cfg.StaleThresholdDuration())
	assert.Equal(t, 30*time.Minute, cfg.CacheTTLDuration())
}
