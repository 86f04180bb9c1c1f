package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/tanq16/wikigrab/internal/download"
	"github.com/tanq16/wikigrab/internal/output"
)

// Downloader executes one transfer task to completion.
type Downloader interface {
	Download(ctx context.Context, task download.Task, onProgress download.ProgressFunc) download.Outcome
}

type Options struct {
	Workers  int
	Progress *output.Manager // nil for headless runs
}

// Result pairs a task with its outcome. Every submitted task produces
// exactly one Result.
type Result struct {
	Task    download.Task
	Outcome download.Outcome
}

// Run executes the tasks over a fixed pool of workers and returns results in
// completion order. Submission order is the given task order; once ctx is
// cancelled no further queued tasks are admitted, and tasks never admitted
// produce no Result.
func Run(ctx context.Context, dl Downloader, tasks []download.Task, opts Options) []Result {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	taskCh := make(chan download.Task, len(tasks))
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	resultCh := make(chan Result, len(tasks))
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			processTasks(ctx, dl, taskCh, resultCh, opts.Progress)
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []Result
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}

func processTasks(ctx context.Context, dl Downloader, taskCh <-chan download.Task, resultCh chan<- Result, mgr *output.Manager) {
	for task := range taskCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		name := filepath.Base(task.OutputPath)
		id := 0
		var onProgress download.ProgressFunc
		if mgr != nil {
			id = mgr.Register(name)
			mgr.SetStatus(id, "pending")
			mgr.SetMessage(id, fmt.Sprintf("Downloading %s", name))
			onProgress = func(written, total int64) {
				mgr.SetProgress(id, written, total)
			}
		}

		outcome := execute(ctx, dl, task, onProgress)

		if mgr != nil {
			switch outcome.Status {
			case download.StatusFailed:
				mgr.ReportError(id, outcome.Err)
			case download.StatusAlreadyComplete:
				mgr.Complete(id, fmt.Sprintf("%s already complete", name))
			case download.StatusResumed:
				mgr.Complete(id, fmt.Sprintf("Resumed and completed %s", name))
			default:
				mgr.Complete(id, fmt.Sprintf("Completed %s", name))
			}
		}
		resultCh <- Result{Task: task, Outcome: outcome}
	}
}

// execute converts a panicking transfer into a failed outcome so one bad
// task cannot take down its siblings or the pool.
func execute(ctx context.Context, dl Downloader, task download.Task, onProgress download.ProgressFunc) (outcome download.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = download.Outcome{
				Status: download.StatusFailed,
				Err:    fmt.Errorf("panic during transfer: %v", r),
			}
		}
	}()
	return dl.Download(ctx, task, onProgress)
}
