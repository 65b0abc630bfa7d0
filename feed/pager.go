/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package feed

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Pager is a remote, stateful cursor that yields pages of items until it is
// exhausted. Item order inside a page is preserved by every traversal.
//
// Traversals never call a Pager concurrently. A Pager that also implements
// io.Closer is closed once the traversal ends, whatever the reason.
type Pager[T any] interface {
	// More reports whether another page can be fetched.
	More() bool
	// NextPage fetches the next page.
	NextPage(ctx context.Context) ([]T, error)
}

// Func is the action applied to every item of a feed.
type Func[T any] func(ctx context.Context, item T) error

// Each adapts a plain callback that cannot fail into a Func.
func Each[T any](f func(T)) Func[T] {
	return func(_ context.Context, item T) error {
		f(item)
		return nil
	}
}

type pagerFunc[T any] struct {
	fetch func(ctx context.Context) ([]T, bool, error)
	done  bool
}

// PagerFunc turns a fetch function into a Pager. fetch returns one page and
// whether another page follows; the pager reports More until fetch says no
// or fails.
func PagerFunc[T any](fetch func(ctx context.Context) (items []T, more bool, err error)) Pager[T] {
	return &pagerFunc[T]{fetch: fetch}
}

func (f *pagerFunc[T]) More() bool {
	return !f.done
}

func (f *pagerFunc[T]) NextPage(ctx context.Context) ([]T, error) {
	items, more, err := f.fetch(ctx)
	if err != nil || !more {
		f.done = true
	}
	return items, err
}

// SlicePager serves a fixed list of pages. It is mainly useful for tests and
// for wrapping results that are already in memory.
type SlicePager[T any] struct {
	mu     sync.Mutex
	pages  [][]T
	next   int
	closed bool
}

// FromPages returns a pager over the given pages, served in order.
func FromPages[T any](pages ...[]T) *SlicePager[T] {
	return &SlicePager[T]{pages: pages}
}

func (s *SlicePager[T]) More() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.next < len(s.pages)
}

func (s *SlicePager[T]) NextPage(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.next >= len(s.pages) {
		return nil, io.EOF
	}
	page := s.pages[s.next]
	s.next++
	return page, nil
}

// Close makes the pager report no more pages.
func (s *SlicePager[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *SlicePager[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// release closes p if it holds resources.
func release[T any](p Pager[T], logger zerolog.Logger) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to release pager")
	}
}
