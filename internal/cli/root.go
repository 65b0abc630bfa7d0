/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package cli implements the entityfeed command.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/suparena/entityfeed/config"
	"github.com/suparena/entityfeed/internal/logging"
)

// env is what every subcommand needs once the root has loaded configuration.
type env struct {
	cfg    config.Config
	logger zerolog.Logger
}

// NewRootCmd creates the root command and wires the subcommands.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		pretty     bool
		e          env
	)

	cmd := &cobra.Command{
		Use:           "entityfeed",
		Short:         "Bulk load and drain document database feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			e.cfg = cfg
			e.logger = logging.Setup(logging.Config{
				Level:  cfg.LogLevel,
				Pretty: pretty,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable log output")

	cmd.AddCommand(
		newVersionCmd(),
		newLoadCmd(&e),
		newDumpCmd(&e),
	)
	return cmd
}
