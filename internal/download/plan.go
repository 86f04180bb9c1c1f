package download

import (
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tanq16/wikigrab/internal/utils"
)

// PlanTasks builds the transfer tasks for one period's files, dropping those
// that never reach the scheduler: a filename that does not form a valid URL,
// or a target that already exists when resume is disabled. The number of
// dropped files is returned as the skip count.
func PlanTasks(fs afero.Fs, baseURL string, files []string, outDir string, resume bool) ([]Task, int) {
	log := utils.GetLogger("download")
	var tasks []Task
	skipped := 0
	for _, name := range files {
		fileURL, err := url.JoinPath(baseURL, name)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Skipping file with invalid URL")
			skipped++
			continue
		}
		localPath := filepath.Join(outDir, name)
		if !resume {
			if _, err := fs.Stat(localPath); err == nil {
				log.Debug().Str("file", name).Msg("Target exists and resume is disabled, skipping")
				skipped++
				continue
			}
		}
		tasks = append(tasks, Task{URL: fileURL, OutputPath: localPath, Resume: resume})
	}
	return tasks, skipped
}
