/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/registry"
	"github.com/suparena/entityfeed/storagemodels"
)

// GSIQueryBuilder provides a fluent interface for building GSI queries
type GSIQueryBuilder[T any] struct {
	store      *DynamodbDataStore[T]
	params     *storagemodels.QueryParams
	indexName  string
	pkValue    string
	skValue    string
	skValue2   string
	skOperator string // "=", "begins_with", ">", "<", ">=", "<=", "BETWEEN"
	filters    []string
	filterVals map[string]types.AttributeValue
}

// QueryGSI creates a new GSI query builder
func (d *DynamodbDataStore[T]) QueryGSI() *GSIQueryBuilder[T] {
	return &GSIQueryBuilder[T]{
		store:      d,
		indexName:  "GSI1", // Default to GSI1
		filterVals: make(map[string]types.AttributeValue),
		params: &storagemodels.QueryParams{
			TableName:                 d.tableName,
			ExpressionAttributeValues: make(map[string]types.AttributeValue),
		},
	}
}

// WithIndex selects the GSI to query; it must be present in DefaultGSIConfigs
func (q *GSIQueryBuilder[T]) WithIndex(indexName string) *GSIQueryBuilder[T] {
	q.indexName = indexName
	return q
}

// WithPartitionKey sets the GSI partition key value
func (q *GSIQueryBuilder[T]) WithPartitionKey(value string) *GSIQueryBuilder[T] {
	q.pkValue = value
	return q
}

// WithSortKey sets the GSI sort key value with equals operator
func (q *GSIQueryBuilder[T]) WithSortKey(value string) *GSIQueryBuilder[T] {
	return q.sortKey("=", value)
}

// WithSortKeyPrefix sets the GSI sort key to use begins_with operator
func (q *GSIQueryBuilder[T]) WithSortKeyPrefix(prefix string) *GSIQueryBuilder[T] {
	return q.sortKey("begins_with", prefix)
}

// WithSortKeyGreaterThan sets the GSI sort key to use > operator
func (q *GSIQueryBuilder[T]) WithSortKeyGreaterThan(value string) *GSIQueryBuilder[T] {
	return q.sortKey(">", value)
}

// WithSortKeyLessThan sets the GSI sort key to use < operator
func (q *GSIQueryBuilder[T]) WithSortKeyLessThan(value string) *GSIQueryBuilder[T] {
	return q.sortKey("<", value)
}

// WithSortKeyBetween sets the GSI sort key to use BETWEEN operator
func (q *GSIQueryBuilder[T]) WithSortKeyBetween(start, end string) *GSIQueryBuilder[T] {
	q.skValue2 = end
	return q.sortKey("BETWEEN", start)
}

func (q *GSIQueryBuilder[T]) sortKey(op, value string) *GSIQueryBuilder[T] {
	q.skOperator = op
	q.skValue = value
	return q
}

// WithFilter adds a filter expression
func (q *GSIQueryBuilder[T]) WithFilter(expression string, values map[string]types.AttributeValue) *GSIQueryBuilder[T] {
	q.filters = append(q.filters, expression)
	for k, v := range values {
		q.filterVals[k] = v
	}
	return q
}

// WithLimit sets the page size of the query
func (q *GSIQueryBuilder[T]) WithLimit(limit int32) *GSIQueryBuilder[T] {
	q.params.Limit = aws.Int32(limit)
	return q
}

// Build constructs the final query parameters
func (q *GSIQueryBuilder[T]) Build() (*storagemodels.QueryParams, error) {
	if q.pkValue == "" {
		return nil, errors.NewValidationError("partitionKey", "GSI partition key value is required")
	}

	gsi, ok := GetGSIConfig(q.indexName)
	if !ok {
		return nil, errors.NewValidationError("indexName", fmt.Sprintf("unknown GSI %q", q.indexName))
	}

	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return nil, fmt.Errorf("%w: %T", errors.ErrNoIndexMap, *new(T))
	}

	pkTemplate, ok := indexMap[gsi.PartitionKeyTemplate]
	if !ok {
		return nil, fmt.Errorf("%s not found in index map", gsi.PartitionKeyTemplate)
	}

	keyConditions := []string{gsi.PartitionKeyName + " = :pk"}
	q.params.ExpressionAttributeValues[":pk"] = &types.AttributeValueMemberS{Value: withTemplatePrefix(pkTemplate, q.pkValue)}

	if q.skValue != "" {
		if skTemplate, hasSK := indexMap[gsi.SortKeyTemplate]; hasSK {
			sk := gsi.SortKeyName
			q.params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: withTemplatePrefix(skTemplate, q.skValue)}

			switch q.skOperator {
			case "begins_with":
				keyConditions = append(keyConditions, "begins_with("+sk+", :sk)")
			case "BETWEEN":
				keyConditions = append(keyConditions, sk+" BETWEEN :sk AND :sk2")
				q.params.ExpressionAttributeValues[":sk2"] = &types.AttributeValueMemberS{Value: withTemplatePrefix(skTemplate, q.skValue2)}
			default:
				keyConditions = append(keyConditions, sk+" "+q.skOperator+" :sk")
			}
		}
	}

	q.params.KeyConditionExpression = strings.Join(keyConditions, " AND ")
	q.params.IndexName = aws.String(gsi.IndexName)

	if len(q.filters) > 0 {
		q.params.FilterExpression = aws.String(strings.Join(q.filters, " AND "))
		for k, v := range q.filterVals {
			q.params.ExpressionAttributeValues[k] = v
		}
	}

	return q.params, nil
}

// Pager builds the query and opens a feed over it
func (q *GSIQueryBuilder[T]) Pager() (feed.Pager[T], error) {
	params, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return q.store.Query(params)
}

// withTemplatePrefix puts the literal prefix of a key template (the text
// before its first macro, e.g. "EMAIL#" in "EMAIL#{Email}") in front of
// value, unless value already carries it.
func withTemplatePrefix(template, value string) string {
	loc := macroPattern.FindStringIndex(template)
	if loc == nil {
		return value
	}
	prefix := template[:loc[0]]
	if strings.HasPrefix(value, prefix) {
		return value
	}
	return prefix + value
}

// Common GSI query patterns as convenience methods

// QueryByGSI1PK opens a feed over every item sharing a GSI1 partition key
func (d *DynamodbDataStore[T]) QueryByGSI1PK(pkValue string) (feed.Pager[T], error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		Pager()
}

// QueryByGSI1PKAndSKPrefix opens a feed using the GSI1 partition key and a sort key prefix
func (d *DynamodbDataStore[T]) QueryByGSI1PKAndSKPrefix(pkValue, skPrefix string) (feed.Pager[T], error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		WithSortKeyPrefix(skPrefix).
		Pager()
}
