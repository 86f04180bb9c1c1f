package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/wikigrab/internal/dumps"
	"github.com/tanq16/wikigrab/internal/scheduler"
)

var periodFiles = map[string][]byte{
	"pageviews-2024010100.gz": []byte("hour zero contents"),
	"pageviews-2024010101.gz": []byte("hour one contents, a bit longer"),
	"pageviews-2024010102.gz": []byte("hour two"),
}

// dumpServer mimics the dump server for one period: a listing page with
// three matching filenames plus one non-matching name, and range-aware file
// endpoints.
func dumpServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pageviews/2024-01/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="pageviews-2024010100.gz">f</a>
<a href="pageviews-2024010101.gz">f</a>
<a href="projectviews-20240101.txt">not a pageviews file</a>
<a href="pageviews-2024010102.gz">f</a>`)
	})
	for name, content := range periodFiles {
		data := content
		mux.HandleFunc("/pageviews/2024-01/"+name, func(w http.ResponseWriter, r *http.Request) {
			if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
				var offset int64
				fmt.Sscanf(rangeHeader, "bytes=%d-", &offset)
				if offset >= int64(len(data)) {
					w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
					return
				}
				w.Header().Set("Content-Length", strconv.Itoa(len(data)-int(offset)))
				w.WriteHeader(http.StatusPartialContent)
				w.Write(data[offset:])
				return
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Write(data)
		})
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		mux.ServeHTTP(w, r)
	})
	return httptest.NewServer(handler)
}

func testRequest(server *httptest.Server) Request {
	dt := dumps.Pageviews
	dt.BaseURL = server.URL + "/pageviews/"
	return Request{
		Period:    "2024-01",
		DataType:  dt,
		OutputDir: "/wiki_logs",
		Workers:   2,
		Resume:    true,
	}
}

func TestPeriodEndToEnd(t *testing.T) {
	server := dumpServer(t, nil)
	defer server.Close()

	fs := afero.NewMemMapFs()
	fetcher := New(fs, &http.Client{}, &http.Client{}, 1024)

	stats, err := fetcher.Period(context.Background(), testRequest(server))
	require.NoError(t, err)
	assert.Equal(t, scheduler.RunStats{Total: 3, Success: 3}, stats)

	for name, content := range periodFiles {
		got, err := afero.ReadFile(fs, "/wiki_logs/pageviews/2024-01/"+name)
		require.NoError(t, err, "file %s downloaded", name)
		assert.Equal(t, content, got)
	}
}

func TestPeriodInvalidBeforeNetwork(t *testing.T) {
	var requests atomic.Int64
	server := dumpServer(t, &requests)
	defer server.Close()

	fetcher := New(afero.NewMemMapFs(), &http.Client{}, &http.Client{}, 1024)
	req := testRequest(server)
	req.Period = "2024-1"

	_, err := fetcher.Period(context.Background(), req)
	assert.ErrorContains(t, err, "invalid period")
	assert.Zero(t, requests.Load(), "invalid period rejected before any network access")
}

func TestPeriodAlreadyCompleteCountsSuccess(t *testing.T) {
	server := dumpServer(t, nil)
	defer server.Close()

	fs := afero.NewMemMapFs()
	// Seed every file as fully downloaded; resume then gets 416 for all.
	for name, content := range periodFiles {
		require.NoError(t, afero.WriteFile(fs, "/wiki_logs/pageviews/2024-01/"+name, content, 0644))
	}
	fetcher := New(fs, &http.Client{}, &http.Client{}, 1024)

	stats, err := fetcher.Period(context.Background(), testRequest(server))
	require.NoError(t, err)
	assert.Equal(t, scheduler.RunStats{Total: 3, Success: 3}, stats)
	for name, content := range periodFiles {
		got, err := afero.ReadFile(fs, "/wiki_logs/pageviews/2024-01/"+name)
		require.NoError(t, err)
		assert.Equal(t, content, got, "already-complete file untouched")
	}
}

func TestPeriodSkipsExistingWithoutResume(t *testing.T) {
	server := dumpServer(t, nil)
	defer server.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/wiki_logs/pageviews/2024-01/pageviews-2024010100.gz", []byte("have it"), 0644))
	fetcher := New(fs, &http.Client{}, &http.Client{}, 1024)
	req := testRequest(server)
	req.Resume = false

	stats, err := fetcher.Period(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, scheduler.RunStats{Total: 3, Success: 2, Skipped: 1}, stats)
	got, err := afero.ReadFile(fs, "/wiki_logs/pageviews/2024-01/pageviews-2024010100.gz")
	require.NoError(t, err)
	assert.Equal(t, []byte("have it"), got, "skipped target never reaches the scheduler")
}

func TestPeriodMaxFilesCap(t *testing.T) {
	server := dumpServer(t, nil)
	defer server.Close()

	fetcher := New(afero.NewMemMapFs(), &http.Client{}, &http.Client{}, 1024)
	req := testRequest(server)
	req.MaxFiles = 2

	stats, err := fetcher.Period(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, scheduler.RunStats{Total: 2, Success: 2}, stats)
}

func TestPeriodEmptyListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := New(afero.NewMemMapFs(), &http.Client{}, &http.Client{}, 1024)
	dt := dumps.Pageviews
	dt.BaseURL = server.URL + "/pageviews/"

	stats, err := fetcher.Period(context.Background(), Request{
		Period:    "2024-01",
		DataType:  dt,
		OutputDir: "/wiki_logs",
		Workers:   2,
		Resume:    true,
	})
	require.NoError(t, err, "an unreachable period listing is no work, not a crash")
	assert.Equal(t, scheduler.RunStats{}, stats)
}
