/*
Package storagemodels defines the data structures shared by every entityfeed backend.

Key Types:

QueryParams:
Parameters for opening a feed. DynamoDB reads the expression fields, Cosmos DB
reads Query and Parameters, Redis reads PartitionKey and Match:

	params := &QueryParams{
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "USER#123"},
	    },
	    FilterExpression: aws.String("Status = :status"),
	    PageSize:         100,
	}

WriteOptions:
Per-write request options for a bulk upsert:

	opts := &WriteOptions{
	    ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

WriteResult:
Result of one point write:

	type WriteResult[T any] struct {
	    Item          T
	    PartitionKey  string
	    RequestCharge float64
	    ETag          string
	    Duration      time.Duration
	}
*/
package storagemodels
