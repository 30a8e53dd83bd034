package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

const defaultAuditRetentionDays = 30

// AuditEventCleaner deletes old audit events and records the outcome; *audit.Service satisfies it.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogCleanup(deleted int64, err error)
}

// CleanupAuditEventsTask removes audit events older than the configured retention period.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, logger *slog.Logger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = defaultAuditRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(time.Duration(retentionDays) * 24 * time.Hour)
		cleaner.LogCleanup(deleted, err)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "cleaned up audit events", "deleted", deleted, "retention_days", retentionDays)
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, logger *slog.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, logger))
}
