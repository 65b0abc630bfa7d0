/*
Package datastore defines the backend contract used by entityfeed.

The main interface is DataStore[T]:

	type DataStore[T any] interface {
	    Upsert(ctx context.Context, item T, partitionKey string, opts *storagemodels.WriteOptions) (storagemodels.WriteResult[T], error)
	    Query(params *storagemodels.QueryParams) (feed.Pager[T], error)
	}

Upsert makes every store a bulk.Writer and Query hands back a feed.Pager, so
any store can be bulk loaded with package bulk and traversed with package feed.

Implementations:
  - ddb: Amazon DynamoDB, single-table design with macro-expanded keys
  - cosmos: Azure Cosmos DB SQL API containers
  - redis: one Redis hash per partition key
  - mock: in-memory partitioned store for tests
*/
package datastore
