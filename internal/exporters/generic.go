package exporters

import (
	"context"

	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
)

// Shelf reads what a user owns and wants.
type Shelf interface {
	Collection(ctx context.Context, userID uint) ([]entities.Volume, error)
	Wishlist(ctx context.Context, userID uint) ([]entities.Volume, error)
}

// LoanLister reads a user's loans.
type LoanLister interface {
	List(ctx context.Context, userID uint, filter loans.Filter) ([]entities.Loan, error)
}

type ExportResult struct {
	SeriesProcessed   int      `json:"series_processed"`
	VolumesProcessed  int      `json:"volumes_processed"`
	WishlistProcessed int      `json:"wishlist_processed"`
	SeriesFailed      int      `json:"series_failed"`
	Files             []string `json:"files"`
}
