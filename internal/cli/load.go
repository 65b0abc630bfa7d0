/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/suparena/entityfeed/bulk"
	"github.com/suparena/entityfeed/internal/logging"
)

func newLoadCmd(e *env) *cobra.Command {
	var (
		file        string
		pkField     string
		idField     string
		chunkSize   int
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk upsert JSON lines into the configured backend",
		Long: `Reads one JSON document per line and upserts them in chunks. Each
document is written under the partition key found in --partition-key-field.`,
		Example: `  entityfeed load --file players.jsonl --partition-key-field club`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("chunk-size") {
				e.cfg.Bulk.ChunkSize = chunkSize
			}
			logger := logging.Component(e.logger, "load")

			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				defer f.Close()
				in = f
			}

			items, err := readDocuments(in, pkField)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), e.cfg, idField, e.logger)
			if err != nil {
				return err
			}
			collector, stop := serveMetrics(metricsAddr, logger)
			defer stop()

			results, err := bulk.UpsertKeyedItems[Document](cmd.Context(), store, items,
				bulk.WithChunkSize(e.cfg.Bulk.ChunkSize),
				bulk.WithLogger(logger),
				bulk.WithMetrics(collector),
			)
			if err != nil {
				return err
			}

			var charge float64
			for _, r := range results {
				charge += r.RequestCharge
			}
			logger.Info().
				Int("items", len(results)).
				Int("chunks", bulk.Chunks(len(results), e.cfg.Bulk.ChunkSize)).
				Float64("request_charge", charge).
				Msg("load complete")
			fmt.Fprintf(cmd.OutOrStdout(), "upserted %d items\n", len(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON lines file, - for stdin")
	cmd.Flags().StringVar(&pkField, "partition-key-field", "pk", "document field holding the partition key")
	cmd.Flags().StringVar(&idField, "id-field", "id", "document field holding the item id (redis)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", bulk.DefaultChunkSize, "items written concurrently per chunk")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// readDocuments decodes one JSON object per non-empty line and pairs it with
// the partition key read from pkField.
func readDocuments(r io.Reader, pkField string) ([]bulk.Keyed[Document], error) {
	pk := fieldString(pkField)

	var items []bulk.Keyed[Document]
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		key := pk(doc)
		if key == "" {
			return nil, fmt.Errorf("line %d: missing partition key field %q", line, pkField)
		}
		items = append(items, bulk.Keyed[Document]{Item: doc, PartitionKey: key})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return items, nil
}
