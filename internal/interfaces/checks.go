package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/mangashelf/internal/audit"
	"github.com/mrlokans/mangashelf/internal/auth"
	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/covers"
	"github.com/mrlokans/mangashelf/internal/database"
	"github.com/mrlokans/mangashelf/internal/database/users"
	"github.com/mrlokans/mangashelf/internal/events"
	"github.com/mrlokans/mangashelf/internal/exporters"
	"github.com/mrlokans/mangashelf/internal/http"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/lookup"
	"github.com/mrlokans/mangashelf/internal/scheduler"
	"github.com/mrlokans/mangashelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Engine stores
var _ catalog.Store = (*database.CatalogStore)(nil)
var _ loans.Store = (*database.LoanStore)(nil)

// Token lookup
var _ auth.TokenValidator = (*users.Repository)(nil)

// =============================================================================
// HTTP Surface
// =============================================================================

var _ http.CatalogService = (*catalog.Service)(nil)
var _ http.LoanManager = (*loans.Engine)(nil)
var _ http.ActiveLoanCounter = (*database.LoanStore)(nil)
var _ http.AuditLogger = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.PayloadSaver = (*audit.Auditor)(nil)
var _ http.CoverFetcher = (*covers.Cache)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.CleanupTrigger = (*scheduler.AuditCleanupScheduler)(nil)

// =============================================================================
// Export
// =============================================================================

var _ exporters.Shelf = (*catalog.Service)(nil)
var _ exporters.LoanLister = (*loans.Engine)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ lookup.Provider = (*lookup.OpenLibraryClient)(nil)

// =============================================================================
// Events and Background Work
// =============================================================================

var _ events.Sink = events.Multi(nil)
var _ events.Sink = events.LogSink{}
var _ events.Sink = (*events.RedisStreamSink)(nil)
var _ events.Sink = events.TaskSink{}
var _ events.CoverEnqueuer = (*tasks.Client)(nil)

var _ tasks.VolumeSource = (*catalog.Service)(nil)
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
