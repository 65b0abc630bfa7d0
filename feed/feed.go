/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package feed

import (
	"context"
	"iter"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/metrics"
)

// pump pulls pages from a pager one at a time and keeps track of the page
// number for logging and error reporting.
type pump[T any] struct {
	pager Pager[T]
	opts  Options
	page  int
}

func (p *pump[T]) more() bool {
	return p.pager.More()
}

func (p *pump[T]) next(ctx context.Context) ([]T, error) {
	p.page++
	items, err := p.pager.NextPage(ctx)
	if err != nil {
		p.opts.Logger.Error().Err(err).Int("page", p.page).Msg("page fetch failed")
		return nil, errors.NewFetchError(p.page, err)
	}
	p.opts.Metrics.PageFetched()
	p.opts.Logger.Debug().Int("page", p.page).Int("items", len(items)).Msg("page fetched")
	return items, nil
}

func (p *pump[T]) apply(ctx context.Context, mode string, fn Func[T], item T) error {
	p.opts.Metrics.ItemDispatched(mode)
	if err := fn(ctx, item); err != nil {
		p.opts.Metrics.ActionFailed(mode)
		p.opts.Logger.Error().Err(err).Int("page", p.page).Str("mode", mode).Msg("action failed")
		return err
	}
	return nil
}

func start[T any](p Pager[T], fn Func[T], opts []Option) (*pump[T], error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewValidationError("pager", "must not be nil")
	}
	if fn == nil {
		return nil, errors.NewValidationError("fn", "must not be nil")
	}
	return &pump[T]{pager: p, opts: o}, nil
}

// ReadAll drains p and returns every item in page order.
//
// ReadAll has no cancellation point of its own: ctx only reaches the pager's
// NextPage, so it is up to the pager whether a cancelled context stops the
// drain.
func ReadAll[T any](ctx context.Context, p Pager[T], opts ...Option) ([]T, error) {
	pm, err := start(p, Each(func(T) {}), opts)
	if err != nil {
		return nil, err
	}
	defer release(p, pm.opts.Logger)

	var all []T
	for pm.more() {
		items, err := pm.next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// All returns a single-use sequence over every item of p. Pages are fetched
// lazily, only once the consumer has taken every item of the previous page.
// The pager is released when the sequence is exhausted or the consumer stops
// early. A fetch failure is yielded once as the error value and ends the
// sequence. Ranging over the sequence a second time yields nothing.
//
// Like ReadAll, All does not poll ctx between items.
func All[T any](ctx context.Context, p Pager[T], opts ...Option) iter.Seq2[T, error] {
	var used atomic.Bool
	return func(yield func(T, error) bool) {
		if used.Swap(true) {
			return
		}
		var zero T
		pm, err := start(p, Each(func(T) {}), opts)
		if err != nil {
			yield(zero, err)
			return
		}
		defer release(p, pm.opts.Logger)

		for pm.more() {
			items, err := pm.next(ctx)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// ForEach applies fn to every item of p, one at a time and in page order.
// ctx is checked before every item; once it is done ForEach returns ctx.Err()
// without touching the rest of the current page.
func ForEach[T any](ctx context.Context, p Pager[T], fn Func[T], opts ...Option) error {
	pm, err := start(p, fn, opts)
	if err != nil {
		return err
	}
	defer release(p, pm.opts.Logger)

	for pm.more() {
		items, err := pm.next(ctx)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := pm.apply(ctx, metrics.ModeSequential, fn, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// ForEachPooled applies fn to every item of p using a pool of pull-workers.
//
// For each page, the items are queued and min(len(page), Workers) workers
// pull from the shared queue until it is empty. The next page is fetched only
// after every worker has returned. Items of a page run in no particular order.
//
// Workers check ctx before taking the next item, so cancellation leaves the
// rest of the queue untouched while actions already running finish. A failed
// action stops its own worker only; the first error is returned once the
// whole page has settled.
func ForEachPooled[T any](ctx context.Context, p Pager[T], fn Func[T], opts ...Option) error {
	pm, err := start(p, fn, opts)
	if err != nil {
		return err
	}
	defer release(p, pm.opts.Logger)

	for pm.more() {
		items, err := pm.next(ctx)
		if err != nil {
			return err
		}

		queue := make(chan T, len(items))
		for _, item := range items {
			queue <- item
		}
		close(queue)

		began := time.Now()
		var g errgroup.Group
		for range min(len(items), pm.opts.Workers) {
			g.Go(func() error {
				for {
					if ctx.Err() != nil {
						return nil
					}
					item, ok := <-queue
					if !ok {
						return nil
					}
					if err := pm.apply(ctx, metrics.ModePooled, fn, item); err != nil {
						return err
					}
				}
			})
		}
		err = g.Wait()
		pm.opts.Metrics.ObserveChunk(metrics.ModePooled, began)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// ForEachChunked applies fn to every item of p in chunks of ChunkSize items.
//
// The items of one chunk run concurrently and the whole chunk settles before
// the next chunk starts. ctx is only checked between chunks: a chunk that has
// started always runs to completion.
func ForEachChunked[T any](ctx context.Context, p Pager[T], fn Func[T], opts ...Option) error {
	pm, err := start(p, fn, opts)
	if err != nil {
		return err
	}
	defer release(p, pm.opts.Logger)

	for pm.more() {
		items, err := pm.next(ctx)
		if err != nil {
			return err
		}
		for chunk := range slices.Chunk(items, pm.opts.ChunkSize) {
			if err := ctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			var g errgroup.Group
			for _, item := range chunk {
				g.Go(func() error {
					return pm.apply(ctx, metrics.ModeChunked, fn, item)
				})
			}
			err := g.Wait()
			pm.opts.Metrics.ObserveChunk(metrics.ModeChunked, began)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
