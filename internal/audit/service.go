package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mrlokans/mangashelf/internal/database/audit"
	"github.com/mrlokans/mangashelf/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	logger  *slog.Logger
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.logger.Error("failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// GetEvents lists audit events for a user, optionally filtered by type.
func (s *Service) GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

// LogCollectionChange records a volume entering or leaving a collection.
func (s *Service) LogCollectionChange(userID, volumeID uint, action, volumeTitle string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCollection,
		Action:      action,
		Description: truncate(volumeTitle, 500),
		EntityType:  "volume",
		EntityID:    &volumeID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogWishlistChange records a wishlist addition or removal.
func (s *Service) LogWishlistChange(userID, volumeID uint, action string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventWishlist,
		Action:     action,
		EntityType: "volume",
		EntityID:   &volumeID,
		Status:     entities.AuditStatusSuccess,
	})
}

// LogLoan records a loan or return. volumeIDs holds every volume touched by the call.
func (s *Service) LogLoan(userID uint, action, borrower string, volumeIDs []uint, err error) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventLoan,
		Action:     action,
		EntityType: "loan",
		Status:     entities.AuditStatusSuccess,
	}
	if borrower != "" {
		event.Description = truncate(fmt.Sprintf("%d volume(s) for %s", len(volumeIDs), borrower), 500)
	} else {
		event.Description = fmt.Sprintf("%d volume(s)", len(volumeIDs))
	}
	if len(volumeIDs) == 1 {
		id := volumeIDs[0]
		event.EntityID = &id
	}
	if mdBytes, e := json.Marshal(map[string]any{"volume_ids": volumeIDs}); e == nil {
		event.Metadata = string(mdBytes)
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogScanImport records the outcome of a barcode batch import.
func (s *Service) LogScanImport(userID uint, payloadFile string, added, failed int) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventScanImport,
		Action:      "scan_import",
		Description: fmt.Sprintf("Imported %d volume(s), %d failed", added, failed),
		EntityType:  "volume",
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"added":   added,
		"failed":  failed,
		"payload": payloadFile,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}
	if added == 0 && failed > 0 {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogCleanup records an audit retention run.
func (s *Service) LogCleanup(deleted int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      "audit_cleanup",
		Description: fmt.Sprintf("Deleted %d audit event(s)", deleted),
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
