// Package scheduler runs periodic jobs on a shared cron instance.
// View refresh timers and cache cleanup are both registered here.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// EntryID identifies a registered job so it can be removed
type EntryID = cron.EntryID

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		// A slow refresh must not stack up behind itself
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{l}), cron.SkipIfStillRunning(cronLogger{l})),
		),
		log: l,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// Every returns the schedule spec for a fixed interval
func Every(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "@every 30s"         - Every 30 seconds
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
func (s *Scheduler) AddJob(schedule string, job Job) (EntryID, error) {
	id, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}

	s.log.Debug().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return id, nil
}

// Remove unregisters a job; a run already in progress completes
func (s *Scheduler) Remove(id EntryID) {
	s.cron.Remove(id)
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

// FuncJob adapts a function to Job
type FuncJob struct {
	JobName string
	Fn      func() error
}

// Run implements Job
func (j FuncJob) Run() error { return j.Fn() }

// Name implements Job
func (j FuncJob) Name() string { return j.JobName }

// cronLogger routes cron's own messages through zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
