/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import "github.com/redis/go-redis/v9"

// Config describes a Redis connection.
type Config struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// NewClient opens a client for cfg. The connection is established lazily on
// the first command.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
