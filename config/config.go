/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads the settings of the entityfeed command from a YAML
// file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/entityfeed/bulk"
	"github.com/suparena/entityfeed/datastore/cosmos"
	"github.com/suparena/entityfeed/datastore/ddb"
	"github.com/suparena/entityfeed/datastore/redis"
	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
)

// Backend names accepted in Config.Backend.
const (
	BackendDynamoDB = "dynamodb"
	BackendCosmos   = "cosmos"
	BackendRedis    = "redis"
)

// Config is the full command configuration.
type Config struct {
	Backend  string        `yaml:"backend"`
	LogLevel string        `yaml:"log_level"`
	DynamoDB ddb.Config    `yaml:"dynamodb"`
	Cosmos   cosmos.Config `yaml:"cosmos"`
	Redis    redis.Config  `yaml:"redis"`
	Bulk     BulkConfig    `yaml:"bulk"`
	Feed     FeedConfig    `yaml:"feed"`
}

// BulkConfig tunes bulk upserts.
type BulkConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// FeedConfig tunes feed traversals.
type FeedConfig struct {
	Workers   int `yaml:"workers"`
	ChunkSize int `yaml:"chunk_size"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Backend:  BackendDynamoDB,
		LogLevel: "info",
		DynamoDB: ddb.Config{Region: "us-east-1"},
		Bulk:     BulkConfig{ChunkSize: bulk.DefaultChunkSize},
		Feed:     FeedConfig{Workers: feed.DefaultWorkers, ChunkSize: feed.DefaultChunkSize},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides. A .env file in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ENTITYFEED_BACKEND":       &c.Backend,
		"ENTITYFEED_LOG_LEVEL":     &c.LogLevel,
		"AWS_ACCESS_KEY":           &c.DynamoDB.AccessKey,
		"AWS_SECRET_KEY":           &c.DynamoDB.SecretKey,
		"AWS_REGION":               &c.DynamoDB.Region,
		"AWS_DDB_TABLE":            &c.DynamoDB.TableName,
		"AWS_DDB_ENDPOINT":         &c.DynamoDB.Endpoint,
		"COSMOS_CONNECTION_STRING": &c.Cosmos.ConnectionString,
		"COSMOS_DATABASE":          &c.Cosmos.Database,
		"COSMOS_CONTAINER":         &c.Cosmos.Container,
		"REDIS_ADDR":               &c.Redis.Addr,
		"REDIS_PASSWORD":           &c.Redis.Password,
		"REDIS_KEY_PREFIX":         &c.Redis.KeyPrefix,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":                   &c.Redis.DB,
		"ENTITYFEED_BULK_CHUNK_SIZE": &c.Bulk.ChunkSize,
		"ENTITYFEED_FEED_WORKERS":    &c.Feed.Workers,
		"ENTITYFEED_FEED_CHUNK_SIZE": &c.Feed.ChunkSize,
	}
	for name, dst := range ints {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(name, fmt.Sprintf("not an integer: %q", v))
		}
		*dst = n
	}
	return nil
}

// Validate checks that the selected backend is fully configured and that
// every size is at least 1.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendDynamoDB:
		if c.DynamoDB.TableName == "" {
			return errors.NewValidationError("dynamodb.table", "required for the dynamodb backend")
		}
		if c.DynamoDB.Region == "" {
			return errors.NewValidationError("dynamodb.region", "required for the dynamodb backend")
		}
	case BackendCosmos:
		if c.Cosmos.ConnectionString == "" || c.Cosmos.Database == "" || c.Cosmos.Container == "" {
			return errors.NewValidationError("cosmos", "connection_string, database and container are required")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.NewValidationError("redis.addr", "required for the redis backend")
		}
	default:
		return errors.NewValidationError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}

	if c.Bulk.ChunkSize < 1 {
		return errors.NewValidationError("bulk.chunk_size", "must be at least 1")
	}
	if c.Feed.Workers < 1 {
		return errors.NewValidationError("feed.workers", "must be at least 1")
	}
	if c.Feed.ChunkSize < 1 {
		return errors.NewValidationError("feed.chunk_size", "must be at least 1")
	}
	return nil
}
