/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command placebot turns place submissions filed as GitHub issues into
// commits on the place directory.
//
// Run without a subcommand (or as "placebot process") from a workflow
// triggered by an issue event, it reads the issue from the environment,
// extracts the place with the configured AI provider, merges it into the
// data file and pushes a branch for review. The "convert" and "check"
// subcommands maintain the data file offline.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/fatih/color"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

type logConfig struct {
	Level slog.Level `env:"LOG_LEVEL,default=info"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(envconfig.OsLookuper()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		cancel()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree reading configuration from env.
func newRootCmd(env envconfig.Lookuper) *cobra.Command {
	var dryRun bool

	root := &cobra.Command{
		Use:           "placebot",
		Short:         "Turn place submissions filed as GitHub issues into commits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var lc logConfig
			if err := envconfig.ProcessWith(cmd.Context(), &envconfig.Config{Target: &lc, Lookuper: env}); err != nil {
				return err
			}
			logger := clog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lc.Level}))
			cmd.SetContext(clog.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd.Context(), env, cmd.OutOrStdout(), dryRun)
		},
	}
	root.Flags().BoolVar(&dryRun, "dry-run", false, "write the data file and image but skip commit and push")

	root.AddCommand(newProcessCmd(env), newConvertCmd(), newCheckCmd())
	return root
}
