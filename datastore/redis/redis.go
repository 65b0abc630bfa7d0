/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/storagemodels"
)

// DefaultScanCount is the COUNT hint sent with HSCAN when QueryParams.PageSize
// is not set.
const DefaultScanCount = 100

// KeyFunc returns the hash field under which an item is stored.
type KeyFunc[T any] func(T) string

// Store implements datastore.DataStore[T] with one Redis hash per partition
// key. Each field holds one JSON-encoded item.
type Store[T any] struct {
	client    redis.Cmdable
	keyFunc   KeyFunc[T]
	keyPrefix string
	logger    zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	keyPrefix string
	logger    zerolog.Logger
}

// WithKeyPrefix namespaces the partition hashes, e.g. "entityfeed:players:".
func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		o.keyPrefix = prefix
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// New constructs a Store for T. keyFunc must return a non-empty, stable id
// for every item.
func New[T any](client redis.Cmdable, keyFunc KeyFunc[T], opts ...StoreOption) *Store[T] {
	o := storeOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		client:    client,
		keyFunc:   keyFunc,
		keyPrefix: o.keyPrefix,
		logger:    o.logger,
	}
}

// Key returns the Redis key of the hash holding a partition.
func (s *Store[T]) Key(partitionKey string) string {
	return s.keyPrefix + partitionKey
}

// Upsert sets the item's field in the partition hash. With opts.TTL set, the
// whole partition hash expires TTL after this write.
//
// Redis has no conditional write here; ConditionExpression and IfMatchETag
// are rejected as validation errors.
func (s *Store[T]) Upsert(ctx context.Context, item T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error) {
	began := time.Now()

	if partitionKey == "" {
		return storagemodels.WriteResult[T]{}, errors.NewValidationError("partitionKey", "required for a Redis write")
	}
	if opts != nil && (opts.ConditionExpression != nil || opts.IfMatchETag != "") {
		return storagemodels.WriteResult[T]{}, errors.NewValidationError("WriteOptions", "conditional writes are not supported by the Redis store")
	}
	field := s.keyFunc(item)
	if field == "" {
		return storagemodels.WriteResult[T]{}, errors.NewValidationError("key", "item key is empty")
	}

	body, err := json.Marshal(item)
	if err != nil {
		return storagemodels.WriteResult[T]{}, fmt.Errorf("failed to marshal item: %w", err)
	}

	key := s.Key(partitionKey)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, body)
	if opts != nil && opts.TTL > 0 {
		pipe.Expire(ctx, key, opts.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return storagemodels.WriteResult[T]{}, fmt.Errorf("HSET %s failed: %w", key, err)
	}

	return storagemodels.WriteResult[T]{
		Item:         item,
		PartitionKey: partitionKey,
		Duration:     time.Since(began),
	}, nil
}

// Query scans the hash of params.PartitionKey with HSCAN, one cursor step per
// page. params.Match filters fields by glob pattern and params.PageSize is
// passed as the COUNT hint.
//
// HSCAN guarantees every field present for the whole scan is returned, but a
// field may be returned more than once if the hash is modified or rehashed
// while the scan runs. Duplicates are not removed.
func (s *Store[T]) Query(params *storagemodels.QueryParams) (feed.Pager[T], error) {
	if params == nil || params.PartitionKey == "" {
		return nil, errors.NewValidationError("PartitionKey", "required for a Redis query")
	}
	count := int64(DefaultScanCount)
	if params.PageSize > 0 {
		count = int64(params.PageSize)
	}
	return &scanPager[T]{
		client: s.client,
		key:    s.Key(params.PartitionKey),
		match:  params.Match,
		count:  count,
		logger: s.logger,
	}, nil
}

// scanPager walks an HSCAN cursor until the server returns cursor 0.
type scanPager[T any] struct {
	client  redis.Cmdable
	key     string
	match   string
	count   int64
	logger  zerolog.Logger
	started bool
	cursor  uint64
}

func (p *scanPager[T]) More() bool {
	return !p.started || p.cursor != 0
}

func (p *scanPager[T]) NextPage(ctx context.Context) ([]T, error) {
	kvs, cursor, err := p.client.HScan(ctx, p.key, p.cursor, p.match, p.count).Result()
	if err != nil {
		return nil, fmt.Errorf("HSCAN %s failed: %w", p.key, err)
	}
	p.started = true
	p.cursor = cursor

	// HSCAN replies with alternating field and value entries.
	items := make([]T, 0, len(kvs)/2)
	for i := 1; i < len(kvs); i += 2 {
		var item T
		if err := json.Unmarshal([]byte(kvs[i]), &item); err != nil {
			return nil, fmt.Errorf("failed to decode field %q: %w", kvs[i-1], err)
		}
		items = append(items, item)
	}
	p.logger.Debug().
		Str("key", p.key).
		Uint64("cursor", cursor).
		Int("items", len(items)).
		Msg("redis page")
	return items, nil
}
