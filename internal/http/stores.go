package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/lookup"
)

// This file consolidates the service interfaces used by HTTP controllers.
// Each controller depends on the narrowest one it needs.

// VolumeResolver resolves keys and reads single volumes.
type VolumeResolver interface {
	Resolve(ctx context.Context, key catalog.VolumeKey) (*entities.Volume, error)
	Volume(ctx context.Context, id uint) (*entities.Volume, error)
	Search(ctx context.Context, query string) ([]lookup.Candidate, error)
}

// SeriesBrowser reads the series hierarchy and adds local volumes to editions.
type SeriesBrowser interface {
	ListSeries(ctx context.Context) ([]entities.Series, error)
	Series(ctx context.Context, id uint) (*catalog.SeriesDetail, error)
	AddLocalVolumesToEdition(ctx context.Context, editionID uint, numbers []int, userID uint) ([]entities.Volume, error)
}

// CollectionManager changes what a user owns.
type CollectionManager interface {
	AddToCollection(ctx context.Context, userID uint, key catalog.VolumeKey) (*entities.Volume, error)
	RemoveFromCollection(ctx context.Context, userID, volumeID uint) error
	Collection(ctx context.Context, userID uint) ([]entities.Volume, error)
	ScanImport(ctx context.Context, userID uint, isbns []string) catalog.ScanResult
}

// WishlistManager changes what a user wants.
type WishlistManager interface {
	AddToWishlist(ctx context.Context, userID, volumeID uint) error
	RemoveFromWishlist(ctx context.Context, userID, volumeID uint) error
	Wishlist(ctx context.Context, userID uint) ([]entities.Volume, error)
}

// CatalogService is everything the router needs from the catalog; *catalog.Service satisfies it.
type CatalogService interface {
	VolumeResolver
	SeriesBrowser
	CollectionManager
	WishlistManager
}

// LoanManager is the loan engine surface; *loans.Engine satisfies it.
type LoanManager interface {
	Loan(ctx context.Context, userID uint, req loans.Request) (*entities.Loan, error)
	Return(ctx context.Context, userID, volumeID uint) (*entities.Loan, error)
	List(ctx context.Context, userID uint, filter loans.Filter) ([]entities.Loan, error)
	BulkLoan(ctx context.Context, userID uint, volumeIDs []uint, borrower, notes string) ([]entities.Loan, error)
	BulkReturn(ctx context.Context, userID uint, volumeIDs []uint) ([]entities.Loan, error)
}

// ActiveLoanCounter reports how many loans are out across all users.
type ActiveLoanCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// AuditLogger records user-facing changes; *audit.Service satisfies it.
type AuditLogger interface {
	LogCollectionChange(userID, volumeID uint, action, volumeTitle string)
	LogWishlistChange(userID, volumeID uint, action string)
	LogLoan(userID uint, action, borrower string, volumeIDs []uint, err error)
	LogScanImport(userID uint, payloadFile string, added, failed int)
}

// AuditReader pages through recorded audit events.
type AuditReader interface {
	GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// PayloadSaver keeps raw request payloads for later inspection; *audit.Auditor satisfies it.
type PayloadSaver interface {
	SaveJSON(data any) (string, error)
}

// CoverFetcher returns a local path for a cover, downloading it when needed.
type CoverFetcher interface {
	GetCover(ctx context.Context, volumeID uint, coverURL string) (string, error)
}

// TaskStatusReader reports the state of a queued task; *tasks.Client satisfies it.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// CleanupTrigger runs the audit cleanup outside its schedule.
type CleanupTrigger interface {
	RunNow(ctx context.Context) error
}

// nopAudit is used when no audit logger is configured.
type nopAudit struct{}

func (nopAudit) LogCollectionChange(uint, uint, string, string)  {}
func (nopAudit) LogWishlistChange(uint, uint, string)            {}
func (nopAudit) LogLoan(uint, string, string, []uint, error)     {}
func (nopAudit) LogScanImport(uint, string, int, int)            {}
