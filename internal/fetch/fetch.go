package fetch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/tanq16/wikigrab/internal/download"
	"github.com/tanq16/wikigrab/internal/dumps"
	"github.com/tanq16/wikigrab/internal/output"
	"github.com/tanq16/wikigrab/internal/scheduler"
	"github.com/tanq16/wikigrab/internal/utils"
)

// Fetcher ties period enumeration, task planning, and the download pool
// together into whole-period runs.
type Fetcher struct {
	fs     afero.Fs
	lister *dumps.Lister
	dl     *download.Downloader
	log    zerolog.Logger
}

// New builds a Fetcher. The listing client and transfer client are separate
// because listing GETs retry while transfers do not.
func New(fs afero.Fs, listingClient, transferClient utils.HTTPDoer, chunkSize int) *Fetcher {
	return &Fetcher{
		fs:     fs,
		lister: dumps.NewLister(listingClient),
		dl:     download.NewDownloader(fs, transferClient, chunkSize),
		log:    utils.GetLogger("fetch"),
	}
}

// Request describes one period download.
type Request struct {
	Period    string
	DataType  dumps.DataType
	OutputDir string
	Workers   int
	MaxFiles  int // 0 means no cap
	Resume    bool
	Progress  *output.Manager
}

// AvailablePeriods lists every period the server offers for the data type.
func (f *Fetcher) AvailablePeriods(ctx context.Context, dataType dumps.DataType) ([]string, error) {
	return f.lister.DiscoverPeriods(ctx, dataType)
}

// Period downloads every file of one period and returns the folded run
// stats. An invalid period is rejected before any network access; an empty
// enumeration yields zero-value stats and no error.
func (f *Fetcher) Period(ctx context.Context, req Request) (scheduler.RunStats, error) {
	var stats scheduler.RunStats
	if !dumps.ValidatePeriodFormat(req.Period) {
		return stats, fmt.Errorf("invalid period %q: must be in YYYY-MM format (e.g. 2024-01)", req.Period)
	}

	files, baseURL := f.lister.ListFiles(ctx, req.Period, req.DataType)
	if len(files) == 0 {
		f.log.Info().Str("period", req.Period).Str("type", req.DataType.Name).Msg("No files found for period")
		return stats, nil
	}
	if req.MaxFiles > 0 && len(files) > req.MaxFiles {
		files = files[:req.MaxFiles]
	}
	f.log.Info().Int("files", len(files)).Str("period", req.Period).Msg("Found files for period")

	periodDir := filepath.Join(req.OutputDir, req.DataType.Name, req.Period)
	if err := f.fs.MkdirAll(periodDir, 0755); err != nil {
		return stats, fmt.Errorf("error creating period directory: %w", err)
	}

	tasks, skipped := download.PlanTasks(f.fs, baseURL, files, periodDir, req.Resume)
	stats.Skip(skipped)

	results := scheduler.Run(ctx, f.dl, tasks, scheduler.Options{
		Workers:  req.Workers,
		Progress: req.Progress,
	})
	for _, res := range results {
		stats.Observe(res.Outcome)
	}
	f.log.Info().
		Str("period", req.Period).
		Int("success", stats.Success).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Msg("Period run finished")
	return stats, nil
}
