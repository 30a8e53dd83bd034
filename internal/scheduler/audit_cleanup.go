// Package scheduler triggers periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRun returns the first activation of schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// AuditCleanupEnqueuer hands cleanup work to the task queue; *tasks.Client satisfies it.
type AuditCleanupEnqueuer interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
}

// AuditCleanupScheduler enqueues an audit cleanup task on a cron schedule.
type AuditCleanupScheduler struct {
	enqueuer      AuditCleanupEnqueuer
	schedule      string
	retentionDays int
	logger        *slog.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler. An empty schedule disables it.
func NewAuditCleanupScheduler(enqueuer AuditCleanupEnqueuer, schedule string, retentionDays int, logger *slog.Logger) *AuditCleanupScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		logger:        logger.With("component", "audit_cleanup_scheduler"),
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. It stops when ctx is done.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		s.logger.Info("audit cleanup scheduler disabled")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		_ = s.RunNow(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRun(s.schedule, time.Now())
	s.logger.Info("audit cleanup scheduler started", "schedule", s.schedule, "next_run", next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running job and stops the cron loop.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("audit cleanup scheduler stopped")
}

// RunNow enqueues one cleanup immediately.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) error {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	id, err := s.enqueuer.EnqueueAuditCleanup(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("failed to enqueue audit cleanup", "error", err)
		return err
	}
	s.logger.Info("audit cleanup enqueued", "task_id", id, "retention_days", s.retentionDays)
	return nil
}

// Running reports whether the cron loop is active.
func (s *AuditCleanupScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
