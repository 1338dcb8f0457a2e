package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/foodstock-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.App.Storage)
	assert.Equal(t, "movements", cfg.Inventory.AggregateMode)
	assert.False(t, cfg.Inventory.StrictStock)
	assert.Equal(t, 24*time.Hour, cfg.Inventory.IdempotencyTTL)
	assert.Equal(t, 10*time.Second, cfg.Lock.TTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("STOCK_STRICT", "true")
	t.Setenv("AGGREGATE_MODE", "BATCHES")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOCK_RETRY_COUNT", "4")
	t.Setenv("LOCK_RETRY_MS", "50")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.Storage)
	assert.True(t, cfg.Inventory.StrictStock)
	assert.Equal(t, "batches", cfg.Inventory.AggregateMode)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 250*time.Millisecond, cfg.Lock.Wait())
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_ValoresInvalidos(t *testing.T) {
	t.Setenv("STORAGE", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "foodstock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/foodstock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
