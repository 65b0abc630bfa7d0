/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/suparena/entityfeed"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entityfeed.GetVersionInfo())
		},
	}
}
