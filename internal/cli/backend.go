/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/suparena/entityfeed/config"
	"github.com/suparena/entityfeed/datastore"
	"github.com/suparena/entityfeed/datastore/cosmos"
	"github.com/suparena/entityfeed/datastore/ddb"
	"github.com/suparena/entityfeed/datastore/redis"
	"github.com/suparena/entityfeed/metrics"
	"github.com/suparena/entityfeed/storagemodels"
)

// Document is the schemaless item the command moves around.
type Document = map[string]any

// openStore is swapped out in tests.
var openStore = func(ctx context.Context, cfg config.Config, idField string, logger zerolog.Logger) (datastore.DataStore[Document], error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		store, err := ddb.NewDynamodbDataStore[Document](ctx, cfg.DynamoDB, ddb.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendCosmos:
		store, err := cosmos.NewStore[Document](cfg.Cosmos, cosmos.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		client := redis.NewClient(cfg.Redis)
		return redis.New[Document](client, fieldString(idField), redis.WithKeyPrefix(cfg.Redis.KeyPrefix), redis.WithLogger(logger)), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// fieldString reads a document field as a string; missing fields are "".
func fieldString(name string) func(Document) string {
	return func(d Document) string {
		v, ok := d[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
}

// queryParams turns the dump flags into backend query parameters. For
// DynamoDB with no explicit key condition, the partition key is matched
// against the PK attribute.
func queryParams(backend, query, partitionKey, match string, pageSize int32) *storagemodels.QueryParams {
	params := &storagemodels.QueryParams{
		PartitionKey: partitionKey,
		Match:        match,
		PageSize:     pageSize,
	}
	switch backend {
	case config.BackendDynamoDB:
		params.KeyConditionExpression = query
		if query == "" && partitionKey != "" {
			params.KeyConditionExpression = ddb.DefaultPartitionAttribute + " = :pk"
		}
		if partitionKey != "" {
			params.ExpressionAttributeValues = map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: partitionKey},
			}
		}
	case config.BackendCosmos:
		params.Query = query
		if params.Query == "" {
			params.Query = "SELECT * FROM c"
		}
	}
	return params
}

// serveMetrics exposes a fresh registry on addr while the command runs. An
// empty addr disables metrics and returns a nil collector.
func serveMetrics(addr string, logger zerolog.Logger) (*metrics.Collector, func()) {
	if addr == "" {
		return nil, func() {}
	}
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return collector, func() { _ = srv.Close() }
}
