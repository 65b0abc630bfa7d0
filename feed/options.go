/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package feed

import (
	"github.com/rs/zerolog"
	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/metrics"
)

const (
	// DefaultWorkers is the pull-worker count used by ForEachPooled.
	DefaultWorkers = 5
	// DefaultChunkSize is the fan-out width used by ForEachChunked.
	DefaultChunkSize = 5
)

// Options configures a traversal.
type Options struct {
	Workers   int                // Pull-workers per page in ForEachPooled (default: 5)
	ChunkSize int                // Items per fan-out chunk in ForEachChunked (default: 5)
	Logger    zerolog.Logger     // Traversal logger (default: disabled)
	Metrics   *metrics.Collector // Optional Prometheus instrumentation
}

// Option is a functional option for configuring a traversal.
type Option func(*Options)

// DefaultOptions returns default traversal options.
func DefaultOptions() Options {
	return Options{
		Workers:   DefaultWorkers,
		ChunkSize: DefaultChunkSize,
		Logger:    zerolog.Nop(),
	}
}

// WithWorkers sets the number of pull-workers per page.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithChunkSize sets the number of items run concurrently per chunk.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		o.ChunkSize = n
	}
}

// WithLogger sets the logger used for page and failure events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMetrics records traversal metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Options) {
		o.Metrics = c
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		return o, errors.NewValidationError("workers", "must be at least 1")
	}
	if o.ChunkSize < 1 {
		return o, errors.NewValidationError("chunkSize", "must be at least 1")
	}
	return o, nil
}
