package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docenhance/internal/logfields"
)

// Scheduler wraps gocron for the periodic full-site sweep.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates an idle scheduler.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleSweep registers sweep to run every interval. The job does not
// fire until Start is called.
func (s *Scheduler) ScheduleSweep(interval time.Duration, sweep func()) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sweep),
		gocron.WithName("site-sweep"),
	)
	if err != nil {
		return fmt.Errorf("create sweep job: %w", err)
	}
	slog.Info("Scheduled periodic sweep",
		logfields.ScheduleID(job.ID().String()),
		slog.Duration("interval", interval))
	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Debug("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running job to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Debug("Stopping scheduler")
	return s.scheduler.Shutdown()
}
