package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/wikigrab/internal/download"
)

type fakeDownloader struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	delay    time.Duration
	outcome  func(task download.Task) download.Outcome
}

func (f *fakeDownloader) Download(ctx context.Context, task download.Task, onProgress download.ProgressFunc) download.Outcome {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	f.mu.Lock()
	if current > f.maxSeen {
		f.maxSeen = current
	}
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.outcome != nil {
		return f.outcome(task)
	}
	return download.Outcome{Status: download.StatusCompleted}
}

func makeTasks(n int) []download.Task {
	tasks := make([]download.Task, n)
	for i := range tasks {
		tasks[i] = download.Task{
			URL:        fmt.Sprintf("http://example.com/f%d.gz", i),
			OutputPath: fmt.Sprintf("/out/f%d.gz", i),
			Resume:     true,
		}
	}
	return tasks
}

func TestRunBoundedConcurrency(t *testing.T) {
	dl := &fakeDownloader{delay: 20 * time.Millisecond}
	tasks := makeTasks(12)

	results := Run(context.Background(), dl, tasks, Options{Workers: 3})

	require.Len(t, results, 12, "every task reports exactly one outcome")
	assert.LessOrEqual(t, dl.maxSeen, int32(3), "never more than Workers transfers in flight")

	seen := make(map[string]int)
	for _, res := range results {
		seen[res.Task.URL]++
		assert.Equal(t, download.StatusCompleted, res.Outcome.Status)
	}
	for _, task := range tasks {
		assert.Equal(t, 1, seen[task.URL], "task %s reported once", task.URL)
	}
}

func TestRunConvertsFailures(t *testing.T) {
	dl := &fakeDownloader{
		outcome: func(task download.Task) download.Outcome {
			if task.URL == "http://example.com/f1.gz" {
				return download.Outcome{Status: download.StatusFailed, Err: errors.New("connection reset")}
			}
			return download.Outcome{Status: download.StatusCompleted}
		},
	}
	results := Run(context.Background(), dl, makeTasks(4), Options{Workers: 2})

	require.Len(t, results, 4)
	failed := 0
	for _, res := range results {
		if res.Outcome.Status == download.StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed, "one failure does not disturb sibling transfers")
}

type panicDownloader struct{}

func (p *panicDownloader) Download(ctx context.Context, task download.Task, onProgress download.ProgressFunc) download.Outcome {
	if task.URL == "http://example.com/f2.gz" {
		panic("boom")
	}
	return download.Outcome{Status: download.StatusCompleted}
}

func TestRunContainsPanics(t *testing.T) {
	results := Run(context.Background(), &panicDownloader{}, makeTasks(5), Options{Workers: 2})

	require.Len(t, results, 5, "a panicking transfer still yields its result")
	for _, res := range results {
		if res.Task.URL == "http://example.com/f2.gz" {
			assert.Equal(t, download.StatusFailed, res.Outcome.Status)
			assert.ErrorContains(t, res.Outcome.Err, "panic during transfer")
		} else {
			assert.Equal(t, download.StatusCompleted, res.Outcome.Status)
		}
	}
}

func TestRunStopsAdmittingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl := &fakeDownloader{}
	results := Run(ctx, dl, makeTasks(6), Options{Workers: 2})
	assert.Empty(t, results, "no task admitted after cancellation")
}

func TestRunDefaultWorkers(t *testing.T) {
	dl := &fakeDownloader{delay: 10 * time.Millisecond}
	results := Run(context.Background(), dl, makeTasks(8), Options{})
	require.Len(t, results, 8)
	assert.LessOrEqual(t, dl.maxSeen, int32(4))
}
