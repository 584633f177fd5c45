package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.False(t, cfg.RedisTLS)
	assert.Equal(t, 4, cfg.AvailabilityWorkers)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, "https://graph.facebook.com/v19.0", cfg.WhatsAppBaseURL)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("AVAILABILITY_WORKERS", "8")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.reservly.io, https://admin.reservly.io")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 8, cfg.AvailabilityWorkers)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, []string{"https://app.reservly.io", "https://admin.reservly.io"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AVAILABILITY_WORKERS", "not-a-number")
	t.Setenv("REDIS_TLS", "maybe")
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 4, cfg.AvailabilityWorkers)
	assert.False(t, cfg.RedisTLS)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
}
