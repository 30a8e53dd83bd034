package http

import (
	"log/slog"
	"time"

	"github.com/mrlokans/mangashelf/internal/auth"
	"github.com/mrlokans/mangashelf/internal/database"
	"github.com/mrlokans/mangashelf/internal/demo"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  CatalogService
	Loans    LoanManager
	Database *database.Database

	// Health reporting (optional)
	LoanCounter ActiveLoanCounter

	// Audit trail (optional)
	Audit        AuditLogger
	AuditReader  AuditReader
	PayloadSaver PayloadSaver

	// Cover caching (optional)
	CoverCache CoverFetcher

	// Authentication; nil means every request acts as the default user
	AuthMiddleware *auth.Middleware

	// Read-only demo mode (optional)
	Demo *demo.Middleware

	// Task queue and scheduler (optional)
	TaskStatus     TaskStatusReader
	CleanupTrigger CleanupTrigger

	// Upper bound on a request, provider lookups included. Zero disables it.
	RequestTimeout time.Duration

	// Application info
	Version string
	Logger  *slog.Logger
}
