/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package bulk

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/metrics"
	"github.com/suparena/entityfeed/storagemodels"
)

// DefaultChunkSize is the number of writes issued concurrently per chunk.
const DefaultChunkSize = 300

// Writer performs a single point upsert into a partitioned container.
type Writer[T any] interface {
	Upsert(ctx context.Context, item T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error)
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc[T any] func(ctx context.Context, item T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error)

func (f WriterFunc[T]) Upsert(ctx context.Context, item T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error) {
	return f(ctx, item, partitionKey, opts)
}

// Keyed pairs an item with the partition key it is written under.
type Keyed[T any] struct {
	Item         T
	PartitionKey string
}

// Options configures a bulk upsert.
type Options struct {
	ChunkSize    int                         // Writes per chunk (default: 300)
	WriteOptions *storagemodels.WriteOptions // Passed to every write
	Logger       zerolog.Logger              // Default: disabled
	Metrics      *metrics.Collector          // Optional Prometheus instrumentation
}

// Option is a functional option for configuring a bulk upsert.
type Option func(*Options)

// DefaultOptions returns default bulk options.
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
		Logger:    zerolog.Nop(),
	}
}

// WithChunkSize sets how many writes run concurrently before waiting.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		o.ChunkSize = n
	}
}

// WithWriteOptions sets the request options passed to every write.
func WithWriteOptions(w *storagemodels.WriteOptions) Option {
	return func(o *Options) {
		o.WriteOptions = w
	}
}

// WithLogger sets the logger used for chunk events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics records write metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Options) {
		o.Metrics = c
	}
}

// Chunks returns how many chunks of size hold n items.
func Chunks(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// UpsertItems writes every item under the same partition key.
// See UpsertKeyedItems for the chunking and failure semantics.
func UpsertItems[T any](ctx context.Context, w Writer[T], items []T, partitionKey string, opts ...Option) ([]storagemodels.WriteResult[T], error) {
	keyed := make([]Keyed[T], len(items))
	for i, item := range items {
		keyed[i] = Keyed[T]{Item: item, PartitionKey: partitionKey}
	}
	return UpsertKeyedItems(ctx, w, keyed, opts...)
}

// UpsertKeyedItems writes each item under its own partition key.
//
// Items are split into contiguous chunks of ChunkSize. All writes of a chunk
// are issued concurrently and the chunk is awaited before the next one
// starts. If a write fails, the call returns a *errors.ChunkError for that
// chunk once the whole chunk has settled. Earlier chunks stay written and
// other writes of the failing chunk may have succeeded too.
//
// On success there is one result per item, in input order.
func UpsertKeyedItems[T any](ctx context.Context, w Writer[T], items []Keyed[T], opts ...Option) ([]storagemodels.WriteResult[T], error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ChunkSize < 1 {
		return nil, errors.NewValidationError("chunkSize", "must be at least 1")
	}
	if w == nil {
		return nil, errors.NewValidationError("writer", "must not be nil")
	}

	total := Chunks(len(items), o.ChunkSize)
	o.Logger.Debug().Int("items", len(items)).Int("chunks", total).Msg("bulk upsert started")

	results := make([]storagemodels.WriteResult[T], 0, len(items))
	offset := 0
	index := 0
	for chunk := range slices.Chunk(items, o.ChunkSize) {
		chunkResults := make([]storagemodels.WriteResult[T], len(chunk))
		began := time.Now()

		var g errgroup.Group
		for i, k := range chunk {
			g.Go(func() error {
				res, err := w.Upsert(ctx, k.Item, k.PartitionKey, o.WriteOptions)
				o.Metrics.WriteDone(err)
				if err != nil {
					return err
				}
				chunkResults[i] = res
				return nil
			})
		}
		err := g.Wait()
		o.Metrics.ObserveChunk("upsert", began)
		if err != nil {
			o.Logger.Error().Err(err).Int("chunk", index).Int("offset", offset).Msg("bulk upsert chunk failed")
			return nil, errors.NewChunkError(index, offset, len(chunk), err)
		}

		results = append(results, chunkResults...)
		o.Logger.Debug().Int("chunk", index).Int("size", len(chunk)).Dur("took", time.Since(began)).Msg("bulk upsert chunk written")
		offset += len(chunk)
		index++
	}
	return results, nil
}
