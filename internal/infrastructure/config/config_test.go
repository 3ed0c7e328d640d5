package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEED_RANDOM_SEED", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, SeedGenerator, cfg.Seed.Source)
	assert.Equal(t, uint64(7), cfg.Seed.RandomSeed)
	assert.Equal(t, QueueNone, cfg.Queue.Provider)
	assert.False(t, cfg.QueueEnabled())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Color)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadQueueProvider(t *testing.T) {
	t.Setenv("QUEUE_PROVIDER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.QueueEnabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Queue.Kafka.Brokers)

	t.Setenv("QUEUE_PROVIDER", "redis")
	t.Setenv("REDIS_DB", "3")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Queue.Redis.DB)
	assert.Equal(t, "localhost:6379", cfg.Queue.Redis.Addr)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"queue provider", map[string]string{"QUEUE_PROVIDER": "sqs"}},
		{"seed source", map[string]string{"SEED_SOURCE": "csv"}},
		{"postgres without dsn", map[string]string{"SEED_SOURCE": "postgres"}},
		{"negative count", map[string]string{"SEED_COUNT": "-4"}},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"port", map[string]string{"SERVER_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateAfterOverride(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Seed.Source = SeedSQLite
	cfg.Database.SQLite.Path = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.SQLite.Path = "seed.db"
	assert.NoError(t, cfg.Validate())
}
