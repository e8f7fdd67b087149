package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"diskwatch/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent journaled probe results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(limitFlag)
				if err != nil {
					return fmt.Errorf("history request failed: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(out, "No journaled probes (journal may be disabled)")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					errText := entry.Error
					if errText == "" {
						errText = "-"
					}
					rows = append(rows, []string{
						humanize.Time(entry.RecordedAt.Local()),
						entry.Outcome,
						fmt.Sprintf("%d", entry.Code),
						humanize.IBytes(uint64(max(entry.BytesRead, 0))),
						entry.Duration.Round(time.Microsecond).String(),
						errText,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"When", "Outcome", "Code", "Read", "Duration", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}
