package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()
	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5000, cfg.Postgres.LockTimeoutMs)
	assert.Equal(t, "buddhist", cfg.Numbering.Calendar)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("POSTGRES_LOCK_TIMEOUT_MS", "250")
	t.Setenv("LOGGER_DISABLE_CALLER", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("DOC_CALENDAR", "gregorian")

	cfg := LoadEnv()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250, cfg.Postgres.LockTimeoutMs)
	assert.True(t, cfg.Logger.DisableCaller)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "gregorian", cfg.Numbering.Calendar)
}
