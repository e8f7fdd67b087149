package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var socketFlag string
	var configFlag string
	var fileFlag string
	var intervalFlag int
	var verboseFlag bool
	var debugFlag bool

	ctx := newCommandContext(&socketFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:   "diskwatch",
		Short: "Disk I/O liveness watchdog",
		Long: `diskwatch repeatedly reads a file with the page cache bypassed and
reports liveness to a supervising service manager. A hung or failing
disk silences the heartbeat, which lets the supervisor escalate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if fileFlag == "" && cfg.Monitor.File == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
				return fmt.Errorf("a probe file is required (set --file or monitor.file)")
			}
			if cmd.Flags().Changed("interval") && intervalFlag <= 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
				return fmt.Errorf("interval must be a positive number of milliseconds")
			}
			return runDaemonProcess(cmd.Context(), ctx, runOptions{
				file:       fileFlag,
				intervalMS: intervalFlag,
				verbose:    verboseFlag,
				debug:      debugFlag,
			})
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
		return err
	})

	rootCmd.PersistentFlags().StringVar(&socketFlag, "socket", "", "Path to the diskwatch daemon socket")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "File to probe (overrides monitor.file)")
	rootCmd.Flags().IntVarP(&intervalFlag, "interval", "i", 0, "Probe interval in milliseconds (overrides monitor.interval_ms)")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&debugFlag, "debug", "d", false, "Disable supervisor notifications and interval override")

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newStopCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
