/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cosmos

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/storagemodels"
)

// Container is the subset of the Cosmos DB container API used by the store.
// *azcosmos.ContainerClient satisfies it.
type Container interface {
	UpsertItem(ctx context.Context, partitionKey azcosmos.PartitionKey, item []byte, o *azcosmos.ItemOptions) (azcosmos.ItemResponse, error)
	NewQueryItemsPager(query string, partitionKey azcosmos.PartitionKey, o *azcosmos.QueryOptions) *runtime.Pager[azcosmos.QueryItemsResponse]
}

// Store implements datastore.DataStore[T] over one Cosmos DB container.
// Items are stored as JSON.
type Store[T any] struct {
	container Container
	logger    zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger zerolog.Logger
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// New constructs a Store for T over container.
func New[T any](container Container, opts ...StoreOption) *Store[T] {
	o := storeOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{container: container, logger: o.logger}
}

// NewStore constructs a Store for T, opening the container described by cfg.
func NewStore[T any](cfg Config, opts ...StoreOption) (*Store[T], error) {
	container, err := NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	return New[T](container, opts...), nil
}

// Upsert inserts or replaces item in the partitionKey partition.
//
// opts.IfMatchETag makes the write conditional on the stored version; a
// mismatch is reported as a ConditionFailedError.
func (s *Store[T]) Upsert(ctx context.Context, item T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error) {
	began := time.Now()

	body, err := json.Marshal(item)
	if err != nil {
		return storagemodels.WriteResult[T]{}, fmt.Errorf("failed to marshal item: %w", err)
	}

	var itemOpts *azcosmos.ItemOptions
	var ifMatch string
	if opts != nil {
		ifMatch = opts.IfMatchETag
		itemOpts = &azcosmos.ItemOptions{EnableContentResponseOnWrite: opts.ReturnContent}
		if opts.IfMatchETag != "" {
			etag := azcore.ETag(opts.IfMatchETag)
			itemOpts.IfMatchEtag = &etag
		}
	}

	resp, err := s.container.UpsertItem(ctx, azcosmos.NewPartitionKeyString(partitionKey), body, itemOpts)
	if err != nil {
		var respErr *azcore.ResponseError
		if stderrors.As(err, &respErr) && respErr.StatusCode == http.StatusPreconditionFailed {
			return storagemodels.WriteResult[T]{}, fmt.Errorf("%w: %w", errors.NewConditionFailedError("upsert", "If-Match "+ifMatch), err)
		}
		return storagemodels.WriteResult[T]{}, fmt.Errorf("UpsertItem failed: %w", err)
	}

	result := storagemodels.WriteResult[T]{
		Item:          item,
		PartitionKey:  partitionKey,
		RequestCharge: float64(resp.RequestCharge),
		ETag:          string(resp.ETag),
		Duration:      time.Since(began),
	}
	if len(resp.Value) > 0 {
		var echoed T
		if err := json.Unmarshal(resp.Value, &echoed); err != nil {
			return result, fmt.Errorf("failed to decode echoed item: %w", err)
		}
		result.Item = echoed
	}

	s.logger.Debug().
		Str("partition", partitionKey).
		Float32("ru", resp.RequestCharge).
		Msg("cosmos upsert")
	return result, nil
}

// Query opens a SQL query over the container. With params.PartitionKey set the
// query is scoped to that partition; otherwise it runs cross-partition.
// params.Parameters binds named parameters such as "@club".
func (s *Store[T]) Query(params *storagemodels.QueryParams) (feed.Pager[T], error) {
	if params == nil || params.Query == "" {
		return nil, errors.NewValidationError("Query", "required for a Cosmos DB query")
	}

	pk := azcosmos.NewPartitionKey()
	if params.PartitionKey != "" {
		pk = azcosmos.NewPartitionKeyString(params.PartitionKey)
	}

	qo := &azcosmos.QueryOptions{PageSizeHint: params.PageSize}
	for name, value := range params.Parameters {
		qo.QueryParameters = append(qo.QueryParameters, azcosmos.QueryParameter{Name: name, Value: value})
	}

	return &queryPager[T]{
		pager:  s.container.NewQueryItemsPager(params.Query, pk, qo),
		logger: s.logger,
	}, nil
}

// queryPager adapts the SDK's pager, decoding each page's JSON items into T.
type queryPager[T any] struct {
	pager  *runtime.Pager[azcosmos.QueryItemsResponse]
	logger zerolog.Logger
	pages  int
}

func (q *queryPager[T]) More() bool {
	return q.pager.More()
}

func (q *queryPager[T]) NextPage(ctx context.Context) ([]T, error) {
	resp, err := q.pager.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	q.pages++

	items := make([]T, 0, len(resp.Items))
	for i, raw := range resp.Items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode item %d of page %d: %w", i, q.pages, err)
		}
		items = append(items, item)
	}
	q.logger.Debug().
		Int("page", q.pages).
		Int("items", len(items)).
		Float32("ru", resp.RequestCharge).
		Msg("cosmos page")
	return items, nil
}
