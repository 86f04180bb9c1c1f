package dumps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tanq16/wikigrab/internal/utils"
)

// Lister discovers periods and files on the dump server by fetching its
// directory-listing pages.
type Lister struct {
	client utils.HTTPDoer
	log    zerolog.Logger
}

func NewLister(client utils.HTTPDoer) *Lister {
	return &Lister{
		client: client,
		log:    utils.GetLogger("dumps"),
	}
}

func (l *Lister) fetchListing(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating GET request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching listing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading listing body: %w", err)
	}
	return string(body), nil
}

// DiscoverPeriods enumerates every YYYY-MM period available for the data
// type, sorted lexicographically (chronological, given the fixed width). A
// failed year sub-listing is logged and skipped; only a failure on the
// top-level listing aborts discovery.
func (l *Lister) DiscoverPeriods(ctx context.Context, dataType DataType) ([]string, error) {
	body, err := l.fetchListing(ctx, dataType.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s listing: %w", dataType.Name, err)
	}
	var periods []string
	for _, year := range ExtractLinks(body, yearPattern) {
		yearBody, err := l.fetchListing(ctx, dataType.BaseURL+year+"/")
		if err != nil {
			l.log.Warn().Err(err).Str("year", year).Msg("Could not fetch month listing for year")
			continue
		}
		periods = append(periods, ExtractLinks(yearBody, monthPattern)...)
	}
	sort.Strings(periods)
	return periods, nil
}

// ListFiles returns the downloadable filenames for one period in document
// order, plus the period's base URL for building absolute file URLs. A fetch
// failure is logged and yields an empty list; callers treat that as "no work
// for this period".
func (l *Lister) ListFiles(ctx context.Context, period string, dataType DataType) ([]string, string) {
	periodURL := dataType.BaseURL + period + "/"
	body, err := l.fetchListing(ctx, periodURL)
	if err != nil {
		l.log.Error().Err(err).Str("period", period).Msg("Could not fetch file listing for period")
		return nil, periodURL
	}
	return ExtractLinks(body, dataType.FilePattern), periodURL
}
