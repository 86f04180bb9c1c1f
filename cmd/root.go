package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tanq16/wikigrab/internal/fetch"
	"github.com/tanq16/wikigrab/internal/utils"
)

var (
	outputDir string
	workers   int
	timeout   time.Duration
	kaTimeout time.Duration
	userAgent string
	chunkSize int
	noResume  bool
	logFile   string
	debug     bool
)

var WikigrabVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "wikigrab",
	Short:   "Wikigrab downloads Wikimedia pageview dump archives",
	Version: WikigrabVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.InitLogger(debug, logFile); err != nil {
			return fmt.Errorf("error initializing logger: %w", err)
		}
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "./wiki_logs", "Output directory for downloaded files")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 4, "Number of parallel downloads")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Per-request timeout (eg. 30s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", utils.DefaultChunkSize, "Chunk size for downloads in bytes")
	rootCmd.PersistentFlags().BoolVar(&noResume, "no-resume", false, "Disable resume of partial downloads")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newBatchCmd())
}

func httpConfig() utils.HTTPClientConfig {
	return utils.HTTPClientConfig{
		Timeout:   timeout,
		KATimeout: kaTimeout,
		UserAgent: userAgent,
	}
}

func newFetcher() *fetch.Fetcher {
	cfg := httpConfig()
	return fetch.New(afero.NewOsFs(), utils.NewListingClient(cfg), utils.NewHTTPClient(cfg), chunkSize)
}

// runContext is cancelled on interrupt so workers stop admitting queued
// tasks; partial files stay on disk for a later resume.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
