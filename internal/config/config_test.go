package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8, cfg.LOD.LowResLevel)
	assert.Equal(t, 13, cfg.LOD.HiResLevel)
	assert.Equal(t, 1000000.0, cfg.LOD.LowResRange)
	assert.Equal(t, 10000.0, cfg.LOD.HiResRange)
	assert.Equal(t, "static", cfg.Source.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
}

func TestOverridesFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOD_HIRES_LEVEL", "15")
	t.Setenv("SOURCE_TYPE", "http")
	t.Setenv("SOURCE_TILE_URL", "https://tiles.example.com/{z}/{x}/{y}.png")
	t.Setenv("CACHE_REDIS_ADDR", "redis:6379")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 15, cfg.LOD.HiResLevel)
	assert.Equal(t, "http", cfg.Source.Type)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
}

func TestRejectsInvalidValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := New()
	assert.Error(t, err)
}

func TestRejectsOutOfRangeViewer(t *testing.T) {
	t.Setenv("VIEWER_LAT", "120")

	_, err := New()
	assert.Error(t, err)
}
