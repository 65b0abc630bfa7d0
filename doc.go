/*
Package entityfeed provides helpers for moving batches of items in and out of
a document database: bulk upserts in fixed-size chunks, and traversal of a
paged query with bounded concurrency.

The work is split across packages:
  - feed: ReadAll, All, ForEach, ForEachPooled and ForEachChunked over any Pager
  - bulk: UpsertItems and UpsertKeyedItems over any Writer
  - datastore: the DataStore contract and its DynamoDB, Cosmos DB, Redis and
    in-memory implementations
  - errors: semantic error types, including FetchError and ChunkError

This package keeps named DataStores per item type and offers the feed and bulk
helpers by store name.

Basic Usage:

	// Create a storage manager
	mts := entityfeed.NewMultiTypeStorage()

	// Register a typed datastore
	players, _ := ddb.NewDynamodbDataStore[Player](ctx, ddb.Config{Region: "us-east-1", TableName: "league"})
	entityfeed.RegisterDataStore[Player](mts, "players", players)

	// Write in chunks of 300
	_, err := entityfeed.Upsert(ctx, mts, "players", roster, "CLUB#oakville")

	// Notify every player, five at a time per page
	err = entityfeed.ForEachPooled(ctx, mts, "players", params, notify)

Cancellation is cooperative and polled only at fixed points: before each item
(ForEach), before each dequeue (ForEachPooled), and between chunks
(ForEachChunked). ReadAll and All never poll; pass a cancellable context to
the datastore instead.
*/
package entityfeed
