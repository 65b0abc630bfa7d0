//go:build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/suparena/entityfeed/bulk"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/storagemodels"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get container endpoint: %v", err)
	}

	client := NewClient(Config{Addr: endpoint})
	cleanup := func() {
		client.Close()
		container.Terminate(ctx)
	}
	return client, cleanup
}

func TestRedisStoreIntegration(t *testing.T) {
	client, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	store := New[player](client, playerKey, WithKeyPrefix("it:"))

	var roster []player
	for i := range 250 {
		roster = append(roster, player{ID: fmt.Sprintf("p%03d", i), Club: "oakville", Rating: 1000 + i})
	}

	t.Run("BulkUpsertThenDrain", func(t *testing.T) {
		results, err := bulk.UpsertItems(ctx, store, roster, "oakville", bulk.WithChunkSize(100))
		require.NoError(t, err)
		require.Len(t, results, 250)

		pager, err := store.Query(&storagemodels.QueryParams{PartitionKey: "oakville", PageSize: 50})
		require.NoError(t, err)
		items, err := feed.ReadAll(ctx, pager)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, p := range items {
			seen[p.ID] = true
		}
		assert.Len(t, seen, 250)
	})

	t.Run("Match", func(t *testing.T) {
		pager, err := store.Query(&storagemodels.QueryParams{PartitionKey: "oakville", Match: "p00*"})
		require.NoError(t, err)
		items, err := feed.ReadAll(ctx, pager)
		require.NoError(t, err)
		assert.Len(t, items, 10)
	})

	t.Run("ChunkedTraversal", func(t *testing.T) {
		pager, err := store.Query(&storagemodels.QueryParams{PartitionKey: "oakville"})
		require.NoError(t, err)

		var total atomic.Int64
		err = feed.ForEachChunked(ctx, pager, func(_ context.Context, p player) error {
			total.Add(int64(p.Rating))
			return nil
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total.Load(), int64(250*1000))
	})

	t.Run("TTL", func(t *testing.T) {
		_, err := store.Upsert(ctx, player{ID: "guest"}, "visitors", &storagemodels.WriteOptions{TTL: time.Minute})
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, store.Key("visitors")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})
}
