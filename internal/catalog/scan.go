package catalog

import (
	"context"
	"errors"

	"github.com/mrlokans/mangashelf/internal/bulk"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/metrics"
)

// ScanFailure describes one barcode that could not be imported.
type ScanFailure struct {
	ISBN     string `json:"isbn"`
	Error    string `json:"error"`
	NotFound bool   `json:"not_found"`
}

// ScanResult is the outcome of a batch barcode import.
type ScanResult struct {
	Added  []entities.Volume `json:"added"`
	Failed []ScanFailure     `json:"failed"`
}

// ScanImport resolves and attaches every ISBN independently. Each barcode gets
// its own transaction; failures are logged and reported, never fatal to the batch.
func (s *Service) ScanImport(ctx context.Context, userID uint, isbns []string) ScanResult {
	result := ScanResult{Failed: []ScanFailure{}}

	result.Added = bulk.BestEffort(isbns,
		func(_ int, isbn string) (entities.Volume, error) {
			volume, err := s.resolve(ctx, VolumeKey{ISBN: isbn}, userID, true)
			if err != nil {
				return entities.Volume{}, err
			}
			metrics.ScanImportItems.WithLabelValues("added").Inc()
			return *volume, nil
		},
		func(_ int, isbn string, err error) {
			metrics.ScanImportItems.WithLabelValues("failed").Inc()
			s.logger.WarnContext(ctx, "scan import skipped barcode", "isbn", isbn, "user_id", userID, "error", err)
			result.Failed = append(result.Failed, ScanFailure{
				ISBN:     isbn,
				Error:    err.Error(),
				NotFound: errors.Is(err, ErrNotFound),
			})
		},
	)

	s.logger.InfoContext(ctx, "scan import finished",
		"user_id", userID, "added", len(result.Added), "failed", len(result.Failed))
	return result
}
