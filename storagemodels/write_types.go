package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// WriteOptions carries per-write request options. Backends read the fields
// that apply to them.
type WriteOptions struct {
	// ConditionExpression guards a DynamoDB put, e.g. "attribute_not_exists(PK)".
	ConditionExpression *string
	// ExpressionAttributeValues binds placeholders used by ConditionExpression.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IfMatchETag makes a Cosmos DB upsert conditional on the stored ETag.
	IfMatchETag string
	// TTL expires the Redis partition hash after the write. Zero keeps it.
	TTL time.Duration
	// ReturnContent asks the backend to echo the stored item back.
	ReturnContent bool
}

// WriteResult describes one completed point write.
type WriteResult[T any] struct {
	Item          T             // The item as written (or as echoed back by the backend)
	PartitionKey  string        // Partition key the item was written under
	RequestCharge float64       // Backend cost: RU for Cosmos, WCU for DynamoDB
	ETag          string        // Version tag of the stored item, if the backend has one
	Duration      time.Duration // Wall time of the write call
}
