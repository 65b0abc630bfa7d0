/*
Package bulk upserts many items into a partitioned container.

Any backend implementing Writer can be used; every store in datastore/ does.

	// Same partition key for every item
	results, err := bulk.UpsertItems(ctx, store, players, "CLUB#oakville")

	// One partition key per item, 100 concurrent writes at a time
	results, err := bulk.UpsertKeyedItems(ctx, store, keyed, bulk.WithChunkSize(100))

Writes are not atomic and are never retried. A failure is reported as an
*errors.ChunkError naming the chunk that contained it; all earlier chunks are
already written.
*/
package bulk
