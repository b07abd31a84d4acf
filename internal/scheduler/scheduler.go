package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Purger deletes history older than a retention window.
type Purger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler periodically enforces the history retention window.
type Scheduler struct {
	scheduler *gocron.Scheduler
	purger    Purger
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(purger Purger, retention, interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		purger:    purger,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the retention job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		s.logger.Info("scheduler: retention disabled; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Debug("scheduler: running retention job", slog.Duration("retention", s.retention))
	if _, err := s.purger.Purge(ctx, s.retention); err != nil {
		s.logger.Error("scheduler: retention job failed", slog.Any("error", err))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
