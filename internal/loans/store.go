package loans

import (
	"context"
	"time"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// Filter selects loans by state.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterReturned Filter = "returned"
)

// ParseFilter maps a query value to a Filter; unknown values mean all loans.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterActive, FilterReturned:
		return Filter(s)
	default:
		return FilterAll
	}
}

// Store is the persistence contract of the loan engine.
type Store interface {
	Owns(ctx context.Context, userID, volumeID uint) (bool, error)
	// FindActiveLoan returns (nil, nil) when the volume is not out.
	FindActiveLoan(ctx context.Context, userID, volumeID uint) (*entities.Loan, error)
	// CreateLoan reports ErrAlreadyLoaned when the store's uniqueness guard rejects the row.
	CreateLoan(ctx context.Context, loan *entities.Loan) error
	// MarkReturned sets returned_at and nothing else.
	MarkReturned(ctx context.Context, loan *entities.Loan, at time.Time) error
	ListLoans(ctx context.Context, userID uint, filter Filter) ([]entities.Loan, error)

	// WithinTx runs fn against a Store bound to one transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
