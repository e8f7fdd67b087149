package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"diskwatch/internal/diskstats"
	"diskwatch/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running watchdog's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return fmt.Errorf("status request failed: %w", err)
				}
				renderStatus(cmd, status)
				return nil
			})
		},
	}
}

func renderStatus(cmd *cobra.Command, status *ipc.StatusResponse) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Watchdog", colorize) {
		fmt.Fprintln(out, line)
	}

	runningKind := statusError
	if status.Running {
		runningKind = statusOK
	}
	fmt.Fprintln(out, renderStatusLine("Running", runningKind, yesNo(status.Running), colorize))
	fmt.Fprintln(out, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
	fmt.Fprintln(out, renderStatusLine("Session", statusInfo, status.SessionID, colorize))
	fmt.Fprintln(out, renderStatusLine("Target", statusInfo, status.Target, colorize))
	if status.Device != "" {
		fmt.Fprintln(out, renderStatusLine("Device", statusInfo, status.Device, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Interval", statusInfo, status.Interval.String(), colorize))

	supervisedKind := statusInfo
	supervisedMsg := "no (standalone)"
	if status.Supervised {
		supervisedKind = statusOK
		supervisedMsg = fmt.Sprintf("yes (timeout %s)", status.WatchdogTimeout)
	}
	fmt.Fprintln(out, renderStatusLine("Supervised", supervisedKind, supervisedMsg, colorize))

	if !status.StartedAt.IsZero() {
		uptime := time.Since(status.StartedAt).Round(time.Second)
		fmt.Fprintln(out, renderStatusLine("Uptime", statusInfo, uptime.String(), colorize))
	}

	for _, line := range renderSectionHeader("Probes", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Iterations", statusInfo, fmt.Sprintf("%d", status.Iterations), colorize))

	failureKind := statusOK
	if status.Failures > 0 {
		failureKind = statusWarn
	}
	if status.ConsecutiveFailures > 0 {
		failureKind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Failures", failureKind,
		fmt.Sprintf("%d total, %d consecutive", status.Failures, status.ConsecutiveFailures), colorize))

	if status.LastOutcome != "" {
		lastKind := statusOK
		lastMsg := status.LastOutcome
		if status.LastOutcomeCode != 0 {
			lastKind = statusError
			lastMsg = fmt.Sprintf("%s (code %d)", status.LastOutcome, status.LastOutcomeCode)
			if status.LastError != "" {
				lastMsg += ": " + status.LastError
			}
		}
		fmt.Fprintln(out, renderStatusLine("Last outcome", lastKind, lastMsg, colorize))
		fmt.Fprintln(out, renderStatusLine("Last probe", statusInfo,
			status.LastProbeAt.Local().Format(time.RFC3339), colorize))
	}

	if status.JournalPath != "" {
		fmt.Fprintln(out, renderStatusLine("Journal", statusInfo,
			fmt.Sprintf("%s (%d recorded, %d failed)", status.JournalPath, status.JournalTotal, status.JournalFailed), colorize))
	}

	if status.DiskMountpoint != "" {
		usageKind := statusOK
		if status.DiskUsedPercent >= 95 {
			usageKind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine("Filesystem", usageKind,
			fmt.Sprintf("%s %.1f%% used (%s free)", status.DiskMountpoint, status.DiskUsedPercent,
				diskstats.FormatBytes(status.DiskFree)), colorize))
	}

	if status.DeviceReads > 0 {
		fmt.Fprintln(out, renderStatusLine("Device reads", statusInfo,
			fmt.Sprintf("%d (%s)", status.DeviceReads, diskstats.FormatBytes(status.DeviceReadBytes)), colorize))
	}
}
