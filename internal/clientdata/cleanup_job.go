package clientdata

import (
	"sync"

	"github.com/rs/zerolog"
)

// CleanupJob sweeps expired backend responses out of the cache tables.
// Reads already ignore expired rows; the sweep only bounds the file size.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
	mu   sync.Mutex
	last map[string]int64 // per-table counts of the most recent sweep
}

// NewCleanupJob creates the cache sweep job
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "response_cache_sweep").Logger(),
	}
}

// Run deletes expired rows from every cache table
func (j *CleanupJob) Run() error {
	removed, err := j.repo.DeleteAllExpired()
	j.mu.Lock()
	j.last = removed
	j.mu.Unlock()
	if err != nil {
		j.log.Error().Err(err).Msg("Response cache sweep failed")
		return err
	}

	event := j.log.Debug()
	var total int64
	for table, n := range removed {
		total += n
		event = event.Int64(table, n)
	}
	if total > 0 {
		event.Int64("total", total).Msg("Expired responses removed")
	}
	return nil
}

// LastRemoved returns how many rows the last sweep removed per table
func (j *CleanupJob) LastRemoved() map[string]int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// Name returns the job name for scheduling and logging
func (j *CleanupJob) Name() string {
	return "response_cache_sweep"
}
