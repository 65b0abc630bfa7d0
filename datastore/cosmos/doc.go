/*
Package cosmos provides an Azure Cosmos DB implementation of the DataStore
interface.

Items are stored as JSON documents. Upsert writes one item with UpsertItem and
reports the request charge (RU) and ETag of the stored document. Query wraps
the SDK's query pager, so each NextPage is one round trip and feeds directly
into the feed package:

	store, err := cosmos.NewStore[Player](cosmos.Config{
	    ConnectionString: os.Getenv("COSMOS_CONNECTION_STRING"),
	    Database:         "league",
	    Container:        "players",
	})
	pager, err := store.Query(&storagemodels.QueryParams{
	    Query:        "SELECT * FROM c WHERE c.club = @club",
	    Parameters:   map[string]any{"@club": "oakville"},
	    PartitionKey: "oakville",
	})
	err = feed.ForEachPooled(ctx, pager, notify, feed.WithWorkers(8))
*/
package cosmos
