/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityfeed/errors"
)

const sampleYAML = `
backend: cosmos
log_level: debug
cosmos:
  connection_string: AccountEndpoint=https://localhost:8081/;AccountKey=a2V5;
  database: league
  container: players
bulk:
  chunk_size: 100
feed:
  workers: 8
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entityfeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 300, cfg.Bulk.ChunkSize)
	assert.Equal(t, 5, cfg.Feed.Workers)
	assert.Equal(t, 5, cfg.Feed.ChunkSize)
	assert.Equal(t, BackendDynamoDB, cfg.Backend)
}

func TestLoad(t *testing.T) {
	t.Run("FileOverDefaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)

		assert.Equal(t, BackendCosmos, cfg.Backend)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "league", cfg.Cosmos.Database)
		assert.Equal(t, 100, cfg.Bulk.ChunkSize)
		assert.Equal(t, 8, cfg.Feed.Workers)
		assert.Equal(t, 5, cfg.Feed.ChunkSize, "unset values keep their default")
		require.NoError(t, cfg.Validate())
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		t.Setenv("ENTITYFEED_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("ENTITYFEED_FEED_WORKERS", "12")

		cfg, err := Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, BackendRedis, cfg.Backend)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 12, cfg.Feed.Workers)
		require.NoError(t, cfg.Validate())
	})

	t.Run("BadInteger", func(t *testing.T) {
		t.Setenv("ENTITYFEED_BULK_CHUNK_SIZE", "many")
		_, err := Load("")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("BadYAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "bulk: [oops"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.DynamoDB.TableName = "league"

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"MissingTable", func(c *Config) { c.DynamoDB.TableName = "" }},
		{"MissingRegion", func(c *Config) { c.DynamoDB.Region = "" }},
		{"UnknownBackend", func(c *Config) { c.Backend = "mongo" }},
		{"IncompleteCosmos", func(c *Config) { c.Backend = BackendCosmos }},
		{"MissingRedisAddr", func(c *Config) { c.Backend = BackendRedis }},
		{"ZeroBulkChunk", func(c *Config) { c.Bulk.ChunkSize = 0 }},
		{"ZeroWorkers", func(c *Config) { c.Feed.Workers = 0 }},
		{"NegativeFeedChunk", func(c *Config) { c.Feed.ChunkSize = -1 }},
	}

	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.True(t, errors.IsValidationError(cfg.Validate()))
		})
	}
}
