/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/registry"
	"github.com/suparena/entityfeed/storagemodels"
)

// DefaultPartitionAttribute is the attribute that receives the partition key
// passed to Upsert.
const DefaultPartitionAttribute = "PK"

// Client is the subset of the DynamoDB API used by the store.
// *dynamodb.Client satisfies it.
type Client interface {
	sdk.QueryAPIClient
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
}

// DynamodbDataStore implements datastore.DataStore[T] on top of one DynamoDB table.
type DynamodbDataStore[T any] struct {
	client        Client
	tableName     string
	partitionAttr string
	logger        zerolog.Logger
}

// StoreOption configures a DynamodbDataStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	partitionAttr string
	logger        zerolog.Logger
}

// WithPartitionAttribute names the attribute that receives the partition key
// passed to Upsert (default: "PK").
func WithPartitionAttribute(name string) StoreOption {
	return func(o *storeOptions) {
		o.partitionAttr = name
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// New constructs a DynamodbDataStore for type T over an existing client.
func New[T any](client Client, tableName string, opts ...StoreOption) *DynamodbDataStore[T] {
	o := storeOptions{
		partitionAttr: DefaultPartitionAttribute,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &DynamodbDataStore[T]{
		client:        client,
		tableName:     tableName,
		partitionAttr: o.partitionAttr,
		logger:        o.logger,
	}
}

// NewDynamodbDataStore constructs a DynamodbDataStore for type T, creating the
// DynamoDB client from cfg.
func NewDynamodbDataStore[T any](ctx context.Context, cfg Config, opts ...StoreOption) (*DynamodbDataStore[T], error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return New[T](client, cfg.TableName, opts...), nil
}

// TableName returns the table the store writes to.
func (d *DynamodbDataStore[T]) TableName() string {
	return d.tableName
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	// Convert keysInput to a map of attribute values
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))

	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			// macro is something like "{ID}"
			key := strings.Trim(macro, "{}")

			val, ok := av[key]
			if !ok {
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// NULL, binary, sets and documents have no key representation
				return ""
			}
		})
		res[attributeName(fieldName)] = expanded
	}

	return res, nil
}

// Upsert writes entity with PutItem, replacing any item with the same key.
//
// Key attributes come from the index map registered for T, if any. A
// non-empty partitionKey is then written to the store's partition attribute,
// overriding the index map. The EntityType attribute is set to T's type name
// so mixed-type tables can be decoded by Query.
func (d *DynamodbDataStore[T]) Upsert(ctx context.Context, entity T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error) {
	began := time.Now()

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return storagemodels.WriteResult[T]{}, fmt.Errorf("failed to marshal entity: %w", err)
	}

	if indexMap, ok := registry.GetIndexMap[T](); ok {
		expanded, err := expandMacros(indexMap, entity)
		if err != nil {
			return storagemodels.WriteResult[T]{}, err
		}
		for k, v := range expanded {
			av[k] = &types.AttributeValueMemberS{Value: v}
		}
	}
	if partitionKey != "" {
		av[d.partitionAttr] = &types.AttributeValueMemberS{Value: partitionKey}
	}
	if name := registry.EntityTypeName[T](); name != "" {
		av[registry.EntityTypeAttribute] = &types.AttributeValueMemberS{Value: name}
	}

	if _, ok := av[d.partitionAttr]; !ok {
		return storagemodels.WriteResult[T]{}, errors.NewValidationError(d.partitionAttr, "no partition key for item")
	}

	input := &sdk.PutItemInput{
		TableName:              &d.tableName,
		Item:                   av,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	}
	if opts != nil && opts.ConditionExpression != nil {
		input.ConditionExpression = opts.ConditionExpression
		input.ExpressionAttributeValues = opts.ExpressionAttributeValues
	}

	out, err := d.client.PutItem(ctx, input)
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return storagemodels.WriteResult[T]{}, fmt.Errorf("%w: %w", errors.NewConditionFailedError("upsert", aws.ToString(input.ConditionExpression)), err)
		}
		return storagemodels.WriteResult[T]{}, fmt.Errorf("PutItem failed: %w", err)
	}

	result := storagemodels.WriteResult[T]{
		Item:         entity,
		PartitionKey: partitionKey,
		Duration:     time.Since(began),
	}
	if out.ConsumedCapacity != nil {
		result.RequestCharge = aws.ToFloat64(out.ConsumedCapacity.CapacityUnits)
	}
	return result, nil
}

// Query opens a paged DynamoDB query. Pages are requested lazily as the
// returned pager is advanced.
func (d *DynamodbDataStore[T]) Query(params *storagemodels.QueryParams) (feed.Pager[T], error) {
	return d.NewQueryPager(params)
}

// NewQueryPager is Query with the concrete pager type, which exposes the
// LastEvaluatedKey for resuming later.
func (d *DynamodbDataStore[T]) NewQueryPager(params *storagemodels.QueryParams) (*QueryPager[T], error) {
	if params == nil || params.KeyConditionExpression == "" {
		return nil, errors.NewValidationError("KeyConditionExpression", "required for a DynamoDB query")
	}

	table := params.TableName
	if table == "" {
		table = d.tableName
	}
	limit := params.Limit
	if limit == nil && params.PageSize > 0 {
		limit = aws.Int32(params.PageSize)
	}

	input := &sdk.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String(params.KeyConditionExpression),
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     limit,
		ScanIndexForward:          params.ScanIndexForward,
		ExclusiveStartKey:         params.ExclusiveStartKey,
	}
	return &QueryPager[T]{client: d.client, input: input, logger: d.logger}, nil
}
