package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"diskwatch/internal/logs"
)

// logs reads the daemon's current log pointer directly, so it works even
// when the daemon is down.
func newLogsCommand(ctx *commandContext) *cobra.Command {
	var linesFlag int
	var followFlag bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logPath := filepath.Join(cfg.Paths.LogDir, "diskwatch.log")

			out := cmd.OutOrStdout()
			lines, offset, err := logs.Tail(logPath, linesFlag)
			if err != nil {
				return err
			}
			if len(lines) == 0 && !followFlag {
				fmt.Fprintf(out, "No log output at %s\n", logPath)
				return nil
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			if !followFlag {
				return nil
			}
			err = logs.Follow(cmd.Context(), logPath, offset, out, 0)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&linesFlag, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "Keep streaming new log lines")
	return cmd
}
