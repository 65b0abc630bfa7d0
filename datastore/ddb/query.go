/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/suparena/entityfeed/registry"
)

// QueryPager pages through a DynamoDB query, one Query call per page.
type QueryPager[T any] struct {
	client  Client
	input   *sdk.QueryInput
	logger  zerolog.Logger
	started bool
	lastKey map[string]types.AttributeValue
	pages   int
}

// More reports whether DynamoDB returned a LastEvaluatedKey for the previous
// page, or whether no page has been requested yet.
func (q *QueryPager[T]) More() bool {
	return !q.started || len(q.lastKey) > 0
}

// NextPage runs one Query call and decodes its items into T.
func (q *QueryPager[T]) NextPage(ctx context.Context) ([]T, error) {
	if q.started {
		q.input.ExclusiveStartKey = q.lastKey
	}
	out, err := q.client.Query(ctx, q.input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	q.started = true
	q.lastKey = out.LastEvaluatedKey
	q.pages++

	items := make([]T, 0, len(out.Items))
	for _, raw := range out.Items {
		item, err := decodeItem[T](raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	q.logger.Debug().
		Str("table", *q.input.TableName).
		Int("page", q.pages).
		Int("items", len(items)).
		Bool("more", len(q.lastKey) > 0).
		Msg("dynamodb page")
	return items, nil
}

// LastEvaluatedKey returns the key to pass as QueryParams.ExclusiveStartKey
// to resume after the last fetched page. It is nil once the query is exhausted.
func (q *QueryPager[T]) LastEvaluatedKey() map[string]types.AttributeValue {
	return q.lastKey
}

// decodeItem converts a raw DynamoDB item to T. The item is decoded directly
// first; if that fails, the unmarshal function registered for the item's
// EntityType is tried.
func decodeItem[T any](item map[string]types.AttributeValue) (T, error) {
	var result T

	var entityType string
	if attr, ok := item[registry.EntityTypeAttribute]; ok {
		if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
			return result, fmt.Errorf("failed to unmarshal EntityType: %w", err)
		}
	}

	direct := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		if k != registry.EntityTypeAttribute {
			direct[k] = v
		}
	}
	directErr := attributevalue.UnmarshalMap(direct, &result)
	if directErr == nil {
		return result, nil
	}

	if entityType != "" {
		if unmarshalFn, err := registry.GetUnmarshalFunc(entityType); err == nil {
			obj, err := unmarshalFn(direct)
			if err != nil {
				return result, fmt.Errorf("failed to unmarshal item for EntityType %q: %w", entityType, err)
			}
			switch typed := obj.(type) {
			case T:
				return typed, nil
			case *T:
				return *typed, nil
			}
			return result, fmt.Errorf("EntityType %q decodes to %T, not %T", entityType, obj, result)
		}
	}

	return result, fmt.Errorf("failed to unmarshal item to type %T: %w", result, directErr)
}
