/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.PageFetched()
	c.PageFetched()
	c.ItemDispatched(ModePooled)
	c.ItemDispatched(ModePooled)
	c.ItemDispatched(ModeChunked)
	c.ActionFailed(ModePooled)
	c.WriteDone(nil)
	c.WriteDone(errors.New("boom"))
	c.WriteDone(nil)
	c.ObserveChunk("upsert", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PagesFetched))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ItemsDispatched.WithLabelValues(ModePooled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ItemsDispatched.WithLabelValues(ModeChunked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ActionErrors.WithLabelValues(ModePooled)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Writes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Writes.WithLabelValues("error")))

	n, err := testutil.GatherAndCount(reg, "entityfeed_chunk_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.PageFetched()
		c.ItemDispatched(ModeSequential)
		c.ActionFailed(ModeSequential)
		c.WriteDone(nil)
		c.ObserveChunk("upsert", time.Now())
	})
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) }, "registering twice on one registry should panic")
}
