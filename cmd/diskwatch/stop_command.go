package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"diskwatch/internal/ipc"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watchdog daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return fmt.Errorf("stop request failed: %w", err)
				}
				if !resp.Stopped {
					return fmt.Errorf("daemon did not acknowledge stop")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stop requested; daemon is shutting down")
				return nil
			})
		},
	}
}
