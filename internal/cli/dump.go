/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/internal/logging"
)

// Traversal modes of the dump command.
const (
	modeSequential = "seq"
	modePooled     = "pooled"
	modeChunked    = "chunked"
	modeAll        = "all"
	modeDrain      = "drain"
)

func newDumpCmd(e *env) *cobra.Command {
	var (
		query        string
		partitionKey string
		match        string
		idField      string
		pageSize     int32
		workers      int
		chunkSize    int
		mode         string
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every item of a query as JSON lines",
		Long: `Runs a query against the configured backend and writes each item to
stdout as one JSON line. --mode selects the traversal: seq (one at a time),
pooled (--workers per page), chunked (--chunk-size at a time), all (lazy
sequence) or drain (collect, then write). Items are written in feed order
except in the pooled and chunked modes.`,
		Example: `  entityfeed dump --partition-key CLUB#oakville --mode pooled --workers 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				e.cfg.Feed.Workers = workers
			}
			if cmd.Flags().Changed("chunk-size") {
				e.cfg.Feed.ChunkSize = chunkSize
			}
			logger := logging.Component(e.logger, "dump")

			store, err := openStore(cmd.Context(), e.cfg, idField, e.logger)
			if err != nil {
				return err
			}
			pager, err := store.Query(queryParams(e.cfg.Backend, query, partitionKey, match, pageSize))
			if err != nil {
				return err
			}

			collector, stop := serveMetrics(metricsAddr, logger)
			defer stop()

			w := &lineWriter{enc: json.NewEncoder(cmd.OutOrStdout())}
			n, err := dump(cmd.Context(), pager, w, mode,
				feed.WithWorkers(e.cfg.Feed.Workers),
				feed.WithChunkSize(e.cfg.Feed.ChunkSize),
				feed.WithLogger(logger),
				feed.WithMetrics(collector),
			)
			logger.Info().Int("items", n).Str("mode", mode).Msg("dump finished")
			return err
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "key condition (dynamodb) or SQL query (cosmos)")
	cmd.Flags().StringVarP(&partitionKey, "partition-key", "p", "", "partition to read")
	cmd.Flags().StringVar(&match, "match", "", "field glob pattern (redis)")
	cmd.Flags().StringVar(&idField, "id-field", "id", "document field holding the item id (redis)")
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "items per page requested from the backend")
	cmd.Flags().IntVarP(&workers, "workers", "w", feed.DefaultWorkers, "workers per page in pooled mode")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", feed.DefaultChunkSize, "items per chunk in chunked mode")
	cmd.Flags().StringVarP(&mode, "mode", "m", modeSequential, "traversal mode: seq, pooled, chunked, all, drain")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// lineWriter serializes JSON lines written from concurrent workers.
type lineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	n   int
}

func (w *lineWriter) write(_ context.Context, doc Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(doc); err != nil {
		return err
	}
	w.n++
	return nil
}

// dump drains pager into w using the traversal named by mode and reports how
// many items were written.
func dump(ctx context.Context, pager feed.Pager[Document], w *lineWriter, mode string, opts ...feed.Option) (int, error) {
	var err error
	switch mode {
	case modeSequential:
		err = feed.ForEach(ctx, pager, w.write, opts...)
	case modePooled:
		err = feed.ForEachPooled(ctx, pager, w.write, opts...)
	case modeChunked:
		err = feed.ForEachChunked(ctx, pager, w.write, opts...)
	case modeAll:
		for doc, ferr := range feed.All(ctx, pager, opts...) {
			if ferr != nil {
				err = ferr
				break
			}
			if err = w.write(ctx, doc); err != nil {
				break
			}
		}
	case modeDrain:
		var docs []Document
		if docs, err = feed.ReadAll(ctx, pager, opts...); err != nil {
			break
		}
		for _, doc := range docs {
			if err = w.write(ctx, doc); err != nil {
				break
			}
		}
	default:
		return 0, fmt.Errorf("unknown mode %q", mode)
	}
	return w.n, err
}
