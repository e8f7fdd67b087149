package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"diskwatch/internal/config"
	"diskwatch/internal/preflight"
	"diskwatch/internal/probe"
)

// check runs entirely in-process so it works whether or not the daemon
// is up. The single probe here exercises the same read path the loop
// uses, cache bypass included.
func newCheckCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run preflight checks and a single probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if fileFlag != "" {
				expanded, err := config.ExpandPath(fileFlag)
				if err != nil {
					return fmt.Errorf("resolve probe file: %w", err)
				}
				cfg.Monitor.File = expanded
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}

			failed := false
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed = true
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if cfg.Monitor.File != "" {
				for _, line := range renderSectionHeader("Probe", colorize) {
					fmt.Fprintln(out, line)
				}
				result := probe.Run(cfg.Monitor.File)
				if result.OK() {
					fmt.Fprintln(out, renderStatusLine("Direct read", statusOK,
						fmt.Sprintf("%d bytes in %s", result.BytesRead,
							result.Duration.Round(time.Microsecond)), colorize))
				} else {
					failed = true
					fmt.Fprintln(out, renderStatusLine("Direct read", statusError, result.Describe(), colorize))
				}
			}

			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "File to probe (overrides monitor.file)")
	return cmd
}
