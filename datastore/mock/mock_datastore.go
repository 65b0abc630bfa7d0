/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.DataStore for testing
package mock

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/storagemodels"
)

// DefaultPageSize is the page size used when neither the store nor the query sets one.
const DefaultPageSize = 10

type record[T any] struct {
	item    T
	version int
}

// partition keeps item ids sorted.
type partition[T any] struct {
	keys    []string
	records map[string]*record[T]
}

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu           sync.RWMutex
	partitions   map[string]*partition[T]
	getKeyFunc   func(entity T) string
	pageSize     int
	putError     error
	putErrorFunc func(entity T, partitionKey string) error
	queryError   error
	writeDelay   time.Duration

	puts     atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
}

// New creates a new mock DataStore
func New[T any]() *DataStore[T] {
	return &DataStore[T]{
		partitions: make(map[string]*partition[T]),
		pageSize:   DefaultPageSize,
	}
}

// WithGetKeyFunc sets a custom function to extract item ids from entities
func (m *DataStore[T]) WithGetKeyFunc(f func(T) string) *DataStore[T] {
	m.getKeyFunc = f
	return m
}

// WithPageSize sets the default number of items per query page
func (m *DataStore[T]) WithPageSize(n int) *DataStore[T] {
	m.pageSize = n
	return m
}

// WithPutError makes every Upsert return err
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithPutErrorFunc decides per write whether Upsert fails
func (m *DataStore[T]) WithPutErrorFunc(f func(entity T, partitionKey string) error) *DataStore[T] {
	m.putErrorFunc = f
	return m
}

// WithQueryError makes the first page fetch of every query fail with err
func (m *DataStore[T]) WithQueryError(err error) *DataStore[T] {
	m.queryError = err
	return m
}

// WithWriteDelay makes every Upsert take at least d
func (m *DataStore[T]) WithWriteDelay(d time.Duration) *DataStore[T] {
	m.writeDelay = d
	return m
}

// Upsert stores an entity under partitionKey, replacing any entity with the same id
func (m *DataStore[T]) Upsert(ctx context.Context, entity T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error) {
	began := time.Now()
	m.puts.Add(1)
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if m.writeDelay > 0 {
		select {
		case <-ctx.Done():
			return storagemodels.WriteResult[T]{}, ctx.Err()
		case <-time.After(m.writeDelay):
		}
	}
	if err := ctx.Err(); err != nil {
		return storagemodels.WriteResult[T]{}, err
	}
	if m.putError != nil {
		return storagemodels.WriteResult[T]{}, m.putError
	}
	if m.putErrorFunc != nil {
		if err := m.putErrorFunc(entity, partitionKey); err != nil {
			return storagemodels.WriteResult[T]{}, err
		}
	}

	key := m.extractKey(entity)
	if key == "" {
		return storagemodels.WriteResult[T]{}, errors.NewValidationError("key", "unable to extract key from entity")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	part, ok := m.partitions[partitionKey]
	if !ok {
		part = &partition[T]{records: make(map[string]*record[T])}
		m.partitions[partitionKey] = part
	}

	rec, exists := part.records[key]
	if opts != nil && opts.IfMatchETag != "" {
		if !exists || etag(rec.version) != opts.IfMatchETag {
			return storagemodels.WriteResult[T]{}, errors.NewConditionFailedError("upsert", "if-match "+opts.IfMatchETag)
		}
	}
	if !exists {
		rec = &record[T]{}
		part.records[key] = rec
		i, _ := slices.BinarySearch(part.keys, key)
		part.keys = slices.Insert(part.keys, i, key)
	}
	rec.item = entity
	rec.version++

	return storagemodels.WriteResult[T]{
		Item:          entity,
		PartitionKey:  partitionKey,
		RequestCharge: 1,
		ETag:          etag(rec.version),
		Duration:      time.Since(began),
	}, nil
}

// Query returns a pager over a snapshot of the matching items, in id order.
// With a PartitionKey only that partition is served; otherwise every
// partition is served in partition key order.
func (m *DataStore[T]) Query(params *storagemodels.QueryParams) (feed.Pager[T], error) {
	if m.queryError != nil {
		err := m.queryError
		return feed.PagerFunc(func(context.Context) ([]T, bool, error) {
			return nil, false, err
		}), nil
	}

	size := m.pageSize
	var selected []string
	if params != nil {
		if params.PageSize > 0 {
			size = int(params.PageSize)
		}
		if params.PartitionKey != "" {
			selected = []string{params.PartitionKey}
		}
	}
	if size < 1 {
		return nil, errors.NewValidationError("pageSize", "must be at least 1")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if selected == nil {
		for pk := range m.partitions {
			selected = append(selected, pk)
		}
		slices.Sort(selected)
	}

	var items []T
	for _, pk := range selected {
		part, ok := m.partitions[pk]
		if !ok {
			continue
		}
		for _, key := range part.keys {
			items = append(items, part.records[key].item)
		}
	}

	var pages [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		pages = append(pages, items[:n:n])
		items = items[n:]
	}
	return feed.FromPages(pages...), nil
}

// Helper methods for testing

// Get returns the entity stored under partitionKey and id
func (m *DataStore[T]) Get(partitionKey, id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero T
	part, ok := m.partitions[partitionKey]
	if !ok {
		return zero, false
	}
	rec, ok := part.records[id]
	if !ok {
		return zero, false
	}
	return rec.item, true
}

// GetData returns a copy of the stored entities, grouped by partition key
func (m *DataStore[T]) GetData() map[string][]T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]T, len(m.partitions))
	for pk, part := range m.partitions {
		for _, key := range part.keys {
			result[pk] = append(result[pk], part.records[key].item)
		}
	}
	return result
}

// Count returns the number of stored entities
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, part := range m.partitions {
		n += len(part.keys)
	}
	return n
}

// Puts returns how many Upsert calls were made, including failed ones
func (m *DataStore[T]) Puts() int {
	return int(m.puts.Load())
}

// PeakConcurrency returns the highest number of Upsert calls seen in flight at once
func (m *DataStore[T]) PeakConcurrency() int {
	return int(m.peak.Load())
}

// Clear removes all data and resets the counters
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partitions = make(map[string]*partition[T])
	m.puts.Store(0)
	m.peak.Store(0)
}

func etag(version int) string {
	return fmt.Sprintf(`"%d"`, version)
}

// extractKey attempts to extract an id from an entity
func (m *DataStore[T]) extractKey(entity T) string {
	if m.getKeyFunc != nil {
		return m.getKeyFunc(entity)
	}
	return fmt.Sprintf("key_%v", entity)
}
