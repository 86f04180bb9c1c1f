package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanq16/wikigrab/internal/dumps"
	"github.com/tanq16/wikigrab/internal/fetch"
	"github.com/tanq16/wikigrab/internal/output"
	"github.com/tanq16/wikigrab/internal/scheduler"
)

func newGetCmd() *cobra.Command {
	var dataTypeName string
	var maxFiles int

	cmd := &cobra.Command{
		Use:   "get [PERIOD]",
		Short: "Download all dump files for one period (YYYY-MM)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			period := args[0]
			dataType, err := dumps.ParseDataType(dataTypeName)
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			ctx, stop := runContext()
			defer stop()

			mgr := output.NewManager()
			mgr.StartDisplay()
			start := time.Now()
			stats, err := newFetcher().Period(ctx, fetch.Request{
				Period:    period,
				DataType:  dataType,
				OutputDir: outputDir,
				Workers:   workers,
				MaxFiles:  maxFiles,
				Resume:    !noResume,
				Progress:  mgr,
			})
			mgr.StopDisplay()
			if err != nil {
				output.PrintError(fmt.Sprintf("Download failed: %v", err))
				os.Exit(1)
			}
			printRunSummary(period, stats, time.Since(start))
			if stats.Failed > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&dataTypeName, "type", "T", "pageviews", "Data type: pageviews (hourly) or ez (compressed daily)")
	cmd.Flags().IntVarP(&maxFiles, "max-files", "m", 0, "Maximum number of files to download (0 = all)")
	return cmd
}

func printRunSummary(period string, stats scheduler.RunStats, elapsed time.Duration) {
	fmt.Println()
	output.PrintHeader(fmt.Sprintf("Period %s finished in %s", period, elapsed.Round(time.Second)))
	output.PrintSuccess2(fmt.Sprintf("  %d of %d successful", stats.Success, stats.Total))
	if stats.Skipped > 0 {
		output.PrintInfo(fmt.Sprintf("  %d skipped", stats.Skipped))
	}
	if stats.Failed > 0 {
		output.PrintError(fmt.Sprintf("  %d failed", stats.Failed))
	}
}
