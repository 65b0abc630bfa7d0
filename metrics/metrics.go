/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics exposes Prometheus instrumentation for feed traversals and
// bulk upserts.
//
// Metrics:
//   - entityfeed_pages_fetched_total (Counter): Pages pulled from a pager
//   - entityfeed_items_dispatched_total{mode} (Counter): Actions started by traversal mode
//   - entityfeed_action_errors_total{mode} (Counter): Actions that returned an error
//   - entityfeed_writes_total{result} (Counter): Point writes issued by bulk upserts ("ok", "error")
//   - entityfeed_chunk_duration_seconds{op} (Histogram): Time to settle one chunk ("upsert", "chunked", "pooled")
//
// A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Traversal modes used as the "mode" label.
const (
	ModeSequential = "sequential"
	ModePooled     = "pooled"
	ModeChunked    = "chunked"
)

// Collector groups the entityfeed metrics registered against one registry.
type Collector struct {
	PagesFetched    prometheus.Counter
	ItemsDispatched *prometheus.CounterVec
	ActionErrors    *prometheus.CounterVec
	Writes          *prometheus.CounterVec
	ChunkDuration   *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "entityfeed_pages_fetched_total",
			Help: "Total number of feed pages fetched",
		}),
		ItemsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "entityfeed_items_dispatched_total",
			Help: "Total number of per-item actions started",
		}, []string{"mode"}),
		ActionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "entityfeed_action_errors_total",
			Help: "Total number of per-item actions that failed",
		}, []string{"mode"}),
		Writes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "entityfeed_writes_total",
			Help: "Total number of point writes issued by bulk upserts",
		}, []string{"result"}),
		ChunkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "entityfeed_chunk_duration_seconds",
			Help:    "Time taken to settle one chunk of concurrent work",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (c *Collector) PageFetched() {
	if c == nil {
		return
	}
	c.PagesFetched.Inc()
}

func (c *Collector) ItemDispatched(mode string) {
	if c == nil {
		return
	}
	c.ItemsDispatched.WithLabelValues(mode).Inc()
}

func (c *Collector) ActionFailed(mode string) {
	if c == nil {
		return
	}
	c.ActionErrors.WithLabelValues(mode).Inc()
}

// WriteDone counts one point write by outcome.
func (c *Collector) WriteDone(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Writes.WithLabelValues(result).Inc()
}

// ObserveChunk records how long a chunk took to settle, measured from start.
func (c *Collector) ObserveChunk(op string, start time.Time) {
	if c == nil {
		return
	}
	c.ChunkDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
