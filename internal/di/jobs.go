package di

import (
	"fmt"

	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/scheduler"
	"github.com/rs/zerolog"
)

// CacheCleanupSchedule runs the expired-entry sweep every five minutes
const CacheCleanupSchedule = "0 */5 * * * *"

// ViewReaperSchedule looks for abandoned views every minute
const ViewReaperSchedule = "30 * * * * *"

// RegisterJobs registers the background jobs that are not tied to a view.
// View timers are registered by the page registry on mount.
func RegisterJobs(container *Container, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		CacheCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		ViewReaper: scheduler.FuncJob{
			JobName: "view_reaper",
			Fn: func() error {
				container.Registry.Reap()
				return nil
			},
		},
	}

	if _, err := container.Scheduler.AddJob(CacheCleanupSchedule, jobs.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", jobs.CacheCleanup.Name(), err)
	}

	if _, err := container.Scheduler.AddJob(ViewReaperSchedule, jobs.ViewReaper); err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", jobs.ViewReaper.Name(), err)
	}

	log.Info().
		Str("cache_cleanup", CacheCleanupSchedule).
		Str("view_reaper", ViewReaperSchedule).
		Msg("Background jobs registered")
	return jobs, nil
}
