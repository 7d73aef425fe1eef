package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"banquet-planner/internal/report"
)

var (
	usageDays   int
	cleanupDays int
)

// metricsCmd reports and maintains execution metrics
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show usage and system health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		usage, err := application.UsageReport(cmd.Context(), usageDays)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, report.Usage(usage.Daily))

		h := usage.Health
		fmt.Fprintf(out, "\nRecipes: %d\n", usage.Count)
		fmt.Fprintf(out, "RAM: %dMB (Alloc) / %dMB (Sys)\n", h.AllocMB, h.SysMB)
		fmt.Fprintf(out, "Reports: %d files, %s\n", h.ReportFiles, h.ReportDiskSize)
		return nil
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete execution metrics older than --days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupDays <= 0 {
			return fmt.Errorf("--days must be positive, got %d", cleanupDays)
		}
		n, err := application.CleanupMetrics(cmd.Context(), cleanupDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d metric record(s)\n", n)
		return nil
	},
}

func init() {
	metricsCmd.Flags().IntVar(&usageDays, "days", 7, "number of days to report")
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "keep records newer than this many days")
	metricsCmd.AddCommand(metricsCleanupCmd)
}
