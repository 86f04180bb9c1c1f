package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/tanq16/wikigrab/internal/utils"
)

type Status string

const (
	StatusCompleted       Status = "completed"
	StatusResumed         Status = "resumed"
	StatusAlreadyComplete Status = "already-complete"
	StatusFailed          Status = "failed"
)

// Task is one file to fetch; it holds everything a transfer needs and can be
// rebuilt at any time from the remote filename and the output directory.
type Task struct {
	URL        string
	OutputPath string
	Resume     bool
}

// Outcome is the terminal result of one transfer, produced exactly once per
// task. BytesWritten counts only bytes written by this attempt.
type Outcome struct {
	Status       Status
	BytesWritten int64
	ResumedFrom  int64
	Err          error
}

func (o Outcome) Success() bool {
	return o.Status != StatusFailed
}

// ProgressFunc receives cumulative local bytes and the declared total size.
// Total is -1 when the server did not declare a Content-Length.
type ProgressFunc func(written, total int64)

// Downloader performs resumable single-file transfers. The filesystem is an
// afero seam so the on-disk contract is testable in memory.
type Downloader struct {
	fs        afero.Fs
	client    utils.HTTPDoer
	chunkSize int
	log       zerolog.Logger
}

func NewDownloader(fs afero.Fs, client utils.HTTPDoer, chunkSize int) *Downloader {
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}
	return &Downloader{
		fs:        fs,
		client:    client,
		chunkSize: chunkSize,
		log:       utils.GetLogger("download"),
	}
}

func failure(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

// Download fetches task.URL to task.OutputPath. When resume is requested and
// a partial file exists, the request carries a byte-range offset equal to the
// local size; the local size is the sole resume checkpoint. On any failure
// the partial file is left in place so a later attempt can pick it up.
func (d *Downloader) Download(ctx context.Context, task Task, onProgress ProgressFunc) Outcome {
	var resumeOffset int64
	if task.Resume {
		if info, err := d.fs.Stat(task.OutputPath); err == nil && info.Size() > 0 {
			resumeOffset = info.Size()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return failure(fmt.Errorf("error creating GET request: %w", err))
	}
	if resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeOffset))
		d.log.Debug().Int64("offset", resumeOffset).Str("path", task.OutputPath).Msg("Attempting resume")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return failure(fmt.Errorf("error executing GET request: %w", err))
	}
	defer resp.Body.Close()

	status := StatusCompleted
	fileMode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// The local file already covers the whole remote resource.
		d.log.Debug().Str("path", task.OutputPath).Msg("File already complete")
		return Outcome{Status: StatusAlreadyComplete}
	case resp.StatusCode == http.StatusPartialContent && resumeOffset > 0:
		status = StatusResumed
		fileMode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	case resp.StatusCode == http.StatusOK:
		if resumeOffset > 0 {
			// Server ignored the range; the partial bytes are not
			// trustworthy against a full body, start over.
			d.log.Warn().Str("path", task.OutputPath).Msg("Server does not support resume, restarting from zero")
			resumeOffset = 0
		}
	default:
		return failure(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	totalSize := int64(-1)
	if resp.ContentLength >= 0 {
		totalSize = resp.ContentLength + resumeOffset
	}

	outFile, err := d.fs.OpenFile(task.OutputPath, fileMode, 0644)
	if err != nil {
		return failure(fmt.Errorf("error opening output file: %w", err))
	}
	defer outFile.Close()

	outcome := Outcome{Status: status, ResumedFrom: resumeOffset}
	written := resumeOffset
	buffer := make([]byte, d.chunkSize)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				outcome.Status = StatusFailed
				outcome.Err = fmt.Errorf("error writing to output file: %w", writeErr)
				return outcome
			}
			outcome.BytesWritten += int64(bytesRead)
			written += int64(bytesRead)
			if onProgress != nil {
				onProgress(written, totalSize)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			outcome.Status = StatusFailed
			outcome.Err = fmt.Errorf("error reading response body: %w", readErr)
			return outcome
		}
	}
	outFile.Sync()
	return outcome
}
