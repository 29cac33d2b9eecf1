package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "test")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Signup.RequireReferral)
	assert.True(t, cfg.Accrual.Enabled)
	assert.Equal(t, "@daily", cfg.Accrual.Schedule)
	assert.Equal(t, "none", cfg.MQ.Backend)
	assert.Equal(t, "wallet-events", cfg.MQ.Channel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "  s3cret ")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("SIGNUP_REQUIRE_REFERRAL", "false")
	t.Setenv("ACCRUAL_SCHEDULE", "0 0 * * *")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("MQ_BACKEND", "RabbitMQ")
	t.Setenv("DB_USE_SSL", "true")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Signup.RequireReferral)
	assert.Equal(t, "0 0 * * *", cfg.Accrual.Schedule)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "rabbitmq", cfg.MQ.Backend)
	assert.True(t, cfg.Database.UseSSL)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := LoadConfig()

	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Metrics.Enabled)
}
