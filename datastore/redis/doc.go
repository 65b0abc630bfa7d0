/*
Package redis provides a Redis implementation of the DataStore interface.

Every partition key maps to one hash. Items are JSON-encoded into the hash
field returned by the store's KeyFunc, so writing the same item twice
replaces it. Query walks the hash with HSCAN:

	store := redis.New[Player](client, func(p Player) string { return p.ID },
	    redis.WithKeyPrefix("league:players:"))
	pager, err := store.Query(&storagemodels.QueryParams{
	    PartitionKey: "oakville",
	    Match:        "junior-*",
	})
	players, err := feed.ReadAll(ctx, pager)

HSCAN may return a field more than once; callers that need exactly-once
delivery must deduplicate.
*/
package redis
