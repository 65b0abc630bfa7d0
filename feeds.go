/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityfeed

import (
	"context"
	"fmt"

	"github.com/suparena/entityfeed/bulk"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/storagemodels"
)

// Open runs params against the store registered as name and returns the
// resulting feed.
func Open[T any](mts *MultiTypeStorage, name string, params *storagemodels.QueryParams) (feed.Pager[T], error) {
	ds, err := GetDataStore[T](mts, name)
	if err != nil {
		return nil, err
	}
	pager, err := ds.Query(params)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	return pager, nil
}

// Upsert bulk-upserts items into the store registered as name.
// See bulk.UpsertItems.
func Upsert[T any](ctx context.Context, mts *MultiTypeStorage, name string, items []T, partitionKey string, opts ...bulk.Option) ([]storagemodels.WriteResult[T], error) {
	ds, err := GetDataStore[T](mts, name)
	if err != nil {
		return nil, err
	}
	return bulk.UpsertItems[T](ctx, ds, items, partitionKey, opts...)
}

// Drain runs params against the store registered as name and collects every
// item of the feed. See feed.ReadAll.
func Drain[T any](ctx context.Context, mts *MultiTypeStorage, name string, params *storagemodels.QueryParams, opts ...feed.Option) ([]T, error) {
	pager, err := Open[T](mts, name, params)
	if err != nil {
		return nil, err
	}
	return feed.ReadAll(ctx, pager, opts...)
}

// ForEach runs params against the store registered as name and applies fn to
// every item, one at a time. See feed.ForEach.
func ForEach[T any](ctx context.Context, mts *MultiTypeStorage, name string, params *storagemodels.QueryParams, fn feed.Func[T], opts ...feed.Option) error {
	pager, err := Open[T](mts, name, params)
	if err != nil {
		return err
	}
	return feed.ForEach(ctx, pager, fn, opts...)
}

// ForEachPooled is ForEach with a worker pool per page. See feed.ForEachPooled.
func ForEachPooled[T any](ctx context.Context, mts *MultiTypeStorage, name string, params *storagemodels.QueryParams, fn feed.Func[T], opts ...feed.Option) error {
	pager, err := Open[T](mts, name, params)
	if err != nil {
		return err
	}
	return feed.ForEachPooled(ctx, pager, fn, opts...)
}

// ForEachChunked is ForEach in concurrent chunks. See feed.ForEachChunked.
func ForEachChunked[T any](ctx context.Context, mts *MultiTypeStorage, name string, params *storagemodels.QueryParams, fn feed.Func[T], opts ...feed.Option) error {
	pager, err := Open[T](mts, name, params)
	if err != nil {
		return err
	}
	return feed.ForEachChunked(ctx, pager, fn, opts...)
}
