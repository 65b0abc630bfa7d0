/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design patterns
  - Macro-based key expansion (e.g., "USER#{ID}")
  - Global Secondary Index (GSI) queries
  - Conditional writes for optimistic locking
  - Automatic EntityType injection for polymorphic storage

Macro Expansion:
Keys can use macros that are replaced with entity field values:

	registry.RegisterIndexMap[User](map[string]string{
	    "PK":     "USER#{ID}",   // Becomes "USER#123"
	    "SK":     "PROFILE",     // Static value
	    "GSI1PK": "EMAIL#{Email}",
	})

Paging:
Query returns a feed.Pager that issues one Query call per page, following
LastEvaluatedKey until DynamoDB stops returning one:

	pager, err := store.Query(&storagemodels.QueryParams{
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "CLUB#oakville"},
	    },
	    PageSize: 100,
	})
	if err != nil {
	    return err
	}
	users, err := feed.ReadAll(ctx, pager)

Writes go through Upsert, which is the bulk.Writer used by bulk.UpsertItems.
*/
package ddb
