package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"diskwatch/internal/ipc"
)

// probe asks the running daemon for one out-of-band read. It never pets
// the supervisor watchdog; use it to spot-check a disk without waiting
// for the next loop iteration.
func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Run one out-of-band probe via the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ProbeNow()
				if err != nil {
					return fmt.Errorf("probe request failed: %w", err)
				}
				entry := resp.Entry
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if entry.Code == 0 {
					fmt.Fprintln(out, renderStatusLine("Probe", statusOK,
						fmt.Sprintf("%s (%d bytes in %s)", entry.Outcome, entry.BytesRead,
							entry.Duration.Round(time.Microsecond)), colorize))
					return nil
				}
				detail := fmt.Sprintf("%s (code %d)", entry.Outcome, entry.Code)
				if entry.Error != "" {
					detail += ": " + entry.Error
				}
				fmt.Fprintln(out, renderStatusLine("Probe", statusError, detail, colorize))
				return fmt.Errorf("probe failed with outcome %s", entry.Outcome)
			})
		},
	}
}
