/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"github.com/suparena/entityfeed/bulk"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/storagemodels"
)

// DataStore is a partitioned container that accepts point upserts and opens
// paged queries.
type DataStore[T any] interface {
	bulk.Writer[T]

	// Query opens a feed over the items selected by params. No request is
	// sent until the first page is fetched.
	Query(params *storagemodels.QueryParams) (feed.Pager[T], error)
}
