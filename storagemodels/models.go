/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// QueryParams defines the parameters used to open a feed against a backend.
// Each backend reads the fields that apply to it and ignores the rest.
type QueryParams struct {
	// TableName is the DynamoDB table name. Defaults to the store's table.
	TableName string
	// KeyConditionExpression is the primary condition for a DynamoDB query.
	KeyConditionExpression string
	// FilterExpression is an optional DynamoDB filter expression.
	FilterExpression *string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// Limit defines an optional DynamoDB limit per query page.
	Limit *int32
	// ExclusiveStartKey resumes a DynamoDB query from a previous page.
	ExclusiveStartKey map[string]types.AttributeValue
	// ScanIndexForward specifies the order for index traversal.
	// If true (default), traversal is in ascending order.
	// If false, traversal is in descending order.
	ScanIndexForward *bool

	// Query is a Cosmos DB SQL query, e.g. "SELECT * FROM c WHERE c.status = @status".
	Query string
	// Parameters binds the named parameters of Query.
	Parameters map[string]any

	// PartitionKey scopes the query to one logical partition (Cosmos, Redis, mock).
	PartitionKey string
	// Match is a glob applied to item ids (Redis HSCAN MATCH).
	Match string
	// PageSize is a hint for the number of items per page. Zero uses the
	// backend default.
	PageSize int32
}
