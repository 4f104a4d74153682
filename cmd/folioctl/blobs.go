package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blobsCmd = &cobra.Command{
	Use:   "blobs",
	Short: "Inspect and maintain the upload directory",
}

var blobsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove images no project references",
	Long: `Remove uploaded images that no project row references and that are
older than SWEEP_GRACE. Younger files may belong to a create that has not
committed yet and are always kept.

Examples:
  folioctl blobs sweep --dry-run
  folioctl blobs sweep`,
	Args: cobra.NoArgs,
	RunE: runBlobsSweep,
}

var sweepDryRun bool

func init() {
	blobsSweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "list orphans without removing them")
	blobsCmd.AddCommand(blobsSweepCmd)
	rootCmd.AddCommand(blobsCmd)
}

func runBlobsSweep(cmd *cobra.Command, args []string) error {
	_, svcs, pool, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()
	defer svcs.Close()

	report, err := svcs.Sweeper.Sweep(cmd.Context(), sweepDryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.Skipped {
		fmt.Fprintln(out, "Another sweep is running; nothing done.")
		return nil
	}
	for _, id := range report.Orphans {
		fmt.Fprintln(out, id)
	}
	verb := "removed"
	n := report.Removed
	if report.DryRun {
		verb = "would remove"
		n = len(report.Orphans)
	}
	fmt.Fprintf(out, "%d scanned, %s %d", report.Scanned, verb, n)
	if report.Failures > 0 {
		fmt.Fprintf(out, ", %d failed", report.Failures)
	}
	fmt.Fprintln(out)
	return nil
}
