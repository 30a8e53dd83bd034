package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Auditor keeps raw request payloads of batch imports on disk.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON writes data as indented JSON to "<uuid>.json" and returns the file name.
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.AuditDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	filename := uuid.NewString() + ".json"

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(filepath.Join(a.AuditDir, filename), payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}
