package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/finsight-test")
	t.Setenv("FINSIGHT_API_URL", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()

	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIURL)
	assert.Equal(t, StoreFile, cfg.StoreBackend)
	assert.Equal(t, "/tmp/finsight-test", cfg.DataDir)
	assert.Equal(t, "/tmp/finsight-test/settings.yaml", cfg.SettingsFile)
	assert.Equal(t, 2*time.Second, cfg.IngestCloseDelay)
	assert.False(t, cfg.EventsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FINSIGHT_API_URL", "https://finsight.example.com")
	t.Setenv("STORE_BACKEND", StoreRedis)
	t.Setenv("REDIS_DB", "4")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("INGEST_CLOSE_DELAY", "500ms")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "https://finsight.example.com", cfg.APIURL)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, 4, cfg.RedisDB)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.IngestCloseDelay)
	assert.Equal(t, 60, cfg.RateLimitRequests)
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://localhost:5173, ,https://app.example.com")

	cfg := Load()

	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadCORSOriginsUnset(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "")

	assert.Empty(t, Load().CORSOrigins)
}
