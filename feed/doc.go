/*
Package feed walks paged query results ("feeds") to completion.

A feed is any Pager[T]: a cursor that reports whether more pages exist and
fetches them one at a time. Every backend in datastore/ returns one from
Query, and FromPages wraps pages that are already in memory.

Traversals:

	// Collect everything
	users, err := feed.ReadAll(ctx, pager)

	// Lazy, single pass; the pager is released when the loop ends
	for user, err := range feed.All(ctx, pager) {
	    if err != nil {
	        return err
	    }
	    fmt.Println(user.Name)
	}

	// One item at a time, in order
	err := feed.ForEach(ctx, pager, notify)

	// Pull-queue worker pool, 8 workers per page
	err := feed.ForEachPooled(ctx, pager, notify, feed.WithWorkers(8))

	// Fan out 10 items at a time, waiting for each chunk
	err := feed.ForEachChunked(ctx, pager, notify, feed.WithChunkSize(10))

Cancellation is cooperative. ForEach checks ctx before every item,
ForEachPooled before every dequeue and ForEachChunked between chunks.
ReadAll and All never check ctx themselves.

Nothing is retried. A page fetch failure is returned as *errors.FetchError and
the first failing action's error is returned as is; side effects of items that
already ran are kept.
*/
package feed
