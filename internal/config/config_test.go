package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carnival-tracker/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "file:transactions.db", cfg.Database.URL)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 6*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Carnival_Transactions", cfg.Sheets.SheetName)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/carnival?sslmode=disable")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Contains(t, cfg.Database.URL, "postgres://")
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Kafka.Enabled)
}

func TestBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")
	t.Setenv("KAFKA_ENABLED", "not-a-bool")

	cfg := config.Load()

	assert.Equal(t, 6*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Kafka.Enabled)
}
