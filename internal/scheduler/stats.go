package scheduler

import "github.com/tanq16/wikigrab/internal/download"

// RunStats accumulates per-file outcomes for one period run. All mutation
// happens at a single aggregation point (the loop folding scheduler results),
// so counters are plain ints; the finished value is handed read-only to the
// reporting layer.
type RunStats struct {
	Total   int
	Success int
	Failed  int
	Skipped int
}

// Observe folds one transfer outcome into the stats.
func (s *RunStats) Observe(outcome download.Outcome) {
	s.Total++
	if outcome.Success() {
		s.Success++
	} else {
		s.Failed++
	}
}

// Skip records n files omitted before scheduling.
func (s *RunStats) Skip(n int) {
	s.Total += n
	s.Skipped += n
}

// Add merges another run's stats, for multi-period batch totals.
func (s *RunStats) Add(o RunStats) {
	s.Total += o.Total
	s.Success += o.Success
	s.Failed += o.Failed
	s.Skipped += o.Skipped
}
