package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tanq16/wikigrab/internal/dumps"
	"github.com/tanq16/wikigrab/internal/fetch"
	"github.com/tanq16/wikigrab/internal/output"
	"github.com/tanq16/wikigrab/internal/scheduler"
)

type BatchEntry struct {
	Period   string `yaml:"period"`
	MaxFiles int    `yaml:"max-files,omitempty"`
}

// BatchFile maps a data-type name to the periods to download for it.
type BatchFile map[string][]BatchEntry

const sampleBatchPath = "wikigrab-batch.yml"

func newBatchCmd() *cobra.Command {
	var initSample bool

	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download several periods listed in a YAML file",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if initSample {
				if err := writeSampleBatchFile(sampleBatchPath); err != nil {
					output.PrintError(fmt.Sprintf("Error writing sample batch file: %v", err))
					os.Exit(1)
				}
				output.PrintSuccess(fmt.Sprintf("Sample batch file written to %s", sampleBatchPath))
				return
			}
			if len(args) == 0 {
				output.PrintError("No batch file provided (use --init to create a sample)")
				os.Exit(1)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Error reading batch file: %v", err))
				os.Exit(1)
			}
			var batchFile BatchFile
			if err := yaml.Unmarshal(data, &batchFile); err != nil {
				output.PrintError(fmt.Sprintf("Error parsing batch file: %v", err))
				os.Exit(1)
			}
			requests := buildRequestsFromBatch(batchFile)
			if len(requests) == 0 {
				output.PrintError("No valid entries found in the batch file")
				os.Exit(1)
			}

			ctx, stop := runContext()
			defer stop()
			fetcher := newFetcher()
			var totals scheduler.RunStats
			runFailed := false
			for _, req := range requests {
				if ctx.Err() != nil {
					break
				}
				mgr := output.NewManager()
				mgr.StartDisplay()
				req.Progress = mgr
				start := time.Now()
				stats, err := fetcher.Period(ctx, req)
				mgr.StopDisplay()
				if err != nil {
					output.PrintError(fmt.Sprintf("Period %s failed: %v", req.Period, err))
					runFailed = true
					continue
				}
				printRunSummary(req.Period, stats, time.Since(start))
				totals.Add(stats)
			}
			if len(requests) > 1 {
				fmt.Println()
				output.PrintHeader(fmt.Sprintf("Batch total: %d successful, %d failed, %d skipped", totals.Success, totals.Failed, totals.Skipped))
			}
			if runFailed || totals.Failed > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&initSample, "init", false, "Write a sample batch file and exit")
	return cmd
}

func buildRequestsFromBatch(batchFile BatchFile) []fetch.Request {
	var requests []fetch.Request
	for typeName, entries := range batchFile {
		dataType, err := dumps.ParseDataType(typeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Unknown data type '%s', skipping...\n", typeName)
			continue
		}
		for _, entry := range entries {
			if !dumps.ValidatePeriodFormat(entry.Period) {
				fmt.Fprintf(os.Stderr, "Warning: Invalid period '%s' in %s section, skipping...\n", entry.Period, typeName)
				continue
			}
			requests = append(requests, fetch.Request{
				Period:    entry.Period,
				DataType:  dataType,
				OutputDir: outputDir,
				Workers:   workers,
				MaxFiles:  entry.MaxFiles,
				Resume:    !noResume,
			})
		}
	}
	return requests
}

func writeSampleBatchFile(path string) error {
	sample := BatchFile{
		"pageviews": {
			{Period: "2024-01", MaxFiles: 10},
			{Period: "2024-02"},
		},
		"ez": {
			{Period: "2023-12"},
		},
	}
	data, err := yaml.Marshal(sample)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
