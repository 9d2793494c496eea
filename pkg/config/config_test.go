package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
environment: development
server:
  port: 8080
  read_timeout: 10s
clickhouse:
  host: localhost
  port: 9000
  database: quantkit
cache:
  backend: memory
  series_ttl: 5m
permtest:
  default_n: 999
  workers: 4
`

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "quantkit", c.ClickHouse.Database)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 5*time.Minute, c.Cache.SeriesTTL)
	assert.Equal(t, 999, c.PermTest.DefaultN)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "environment: [not: valid"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing environment", "clickhouse:\n  host: localhost\n  database: db\n"},
		{"missing clickhouse host", "environment: dev\nclickhouse:\n  database: db\n"},
		{"missing clickhouse database", "environment: dev\nclickhouse:\n  host: localhost\n"},
		{"bad cache backend", "environment: dev\nclickhouse:\n  host: h\n  database: db\ncache:\n  backend: memcached\n"},
		{"negative resample count", "environment: dev\nclickhouse:\n  host: h\n  database: db\npermtest:\n  default_n: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "redis.internal")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "ch.internal", c.ClickHouse.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "redis", c.Cache.Backend)
	assert.Equal(t, "redis.internal", c.Cache.Redis.Host)
}
