// Package loans enforces the lending rules for owned volumes: a loan requires
// ownership, a volume has at most one active loan, and a returned loan is final.
package loans

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mrlokans/mangashelf/internal/bulk"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/metrics"
)

// Engine is the loan consistency engine. It holds no per-request state.
type Engine struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// Request describes one volume to lend.
type Request struct {
	VolumeID     uint   `json:"volume_id"`
	BorrowerName string `json:"borrower_name"`
	Notes        string `json:"notes,omitempty"`
}

// Loan lends a volume the user owns.
func (e *Engine) Loan(ctx context.Context, userID uint, req Request) (*entities.Loan, error) {
	var loan *entities.Loan
	err := e.store.WithinTx(ctx, func(tx Store) error {
		var err error
		loan, err = e.loanIn(ctx, tx, userID, req)
		return err
	})
	metrics.LoanOperations.WithLabelValues("loan", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "volume loaned", "user_id", userID, "volume_id", req.VolumeID, "loan_id", loan.ID)
	return loan, nil
}

// Return closes the active loan of a volume. Only returned_at changes.
func (e *Engine) Return(ctx context.Context, userID, volumeID uint) (*entities.Loan, error) {
	var loan *entities.Loan
	err := e.store.WithinTx(ctx, func(tx Store) error {
		var err error
		loan, err = e.returnIn(ctx, tx, userID, volumeID)
		return err
	})
	metrics.LoanOperations.WithLabelValues("return", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "volume returned", "user_id", userID, "volume_id", volumeID, "loan_id", loan.ID)
	return loan, nil
}

// List returns the user's loans, newest first, each joined with its volume.
func (e *Engine) List(ctx context.Context, userID uint, filter Filter) ([]entities.Loan, error) {
	out, err := e.store.ListLoans(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return out, nil
}

// BulkLoan lends every volume to the same borrower or none at all.
// Volumes are processed in input order; the first failure aborts the batch.
func (e *Engine) BulkLoan(ctx context.Context, userID uint, volumeIDs []uint, borrower, notes string) ([]entities.Loan, error) {
	var created []entities.Loan
	err := e.store.WithinTx(ctx, func(tx Store) error {
		var err error
		created, err = bulk.AllOrNothing(volumeIDs, func(_ int, volumeID uint) (entities.Loan, error) {
			loan, err := e.loanIn(ctx, tx, userID, Request{VolumeID: volumeID, BorrowerName: borrower, Notes: notes})
			if err != nil {
				return entities.Loan{}, err
			}
			return *loan, nil
		})
		return err
	})
	metrics.LoanOperations.WithLabelValues("bulk_loan", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "volumes loaned", "user_id", userID, "count", len(created))
	return created, nil
}

// BulkReturn returns every volume or none at all.
func (e *Engine) BulkReturn(ctx context.Context, userID uint, volumeIDs []uint) ([]entities.Loan, error) {
	var returned []entities.Loan
	err := e.store.WithinTx(ctx, func(tx Store) error {
		var err error
		returned, err = bulk.AllOrNothing(volumeIDs, func(_ int, volumeID uint) (entities.Loan, error) {
			loan, err := e.returnIn(ctx, tx, userID, volumeID)
			if err != nil {
				return entities.Loan{}, err
			}
			return *loan, nil
		})
		return err
	})
	metrics.LoanOperations.WithLabelValues("bulk_return", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "volumes returned", "user_id", userID, "count", len(returned))
	return returned, nil
}

func (e *Engine) loanIn(ctx context.Context, tx Store, userID uint, req Request) (*entities.Loan, error) {
	borrower := strings.TrimSpace(req.BorrowerName)
	if borrower == "" {
		return nil, ErrBorrowerRequired
	}

	owned, err := tx.Owns(ctx, userID, req.VolumeID)
	if err != nil {
		return nil, fmt.Errorf("check ownership of volume %d: %w", req.VolumeID, err)
	}
	if !owned {
		return nil, fmt.Errorf("volume %d: %w", req.VolumeID, ErrNotOwned)
	}

	active, err := tx.FindActiveLoan(ctx, userID, req.VolumeID)
	if err != nil {
		return nil, fmt.Errorf("find active loan of volume %d: %w", req.VolumeID, err)
	}
	if active != nil {
		return nil, &AlreadyLoanedError{VolumeID: req.VolumeID, Borrower: active.BorrowerName}
	}

	loan := &entities.Loan{
		UserID:       userID,
		VolumeID:     req.VolumeID,
		BorrowerName: borrower,
		LoanedAt:     e.now(),
		Notes:        strings.TrimSpace(req.Notes),
	}
	if err := tx.CreateLoan(ctx, loan); err != nil {
		return nil, fmt.Errorf("create loan of volume %d: %w", req.VolumeID, err)
	}
	return loan, nil
}

func (e *Engine) returnIn(ctx context.Context, tx Store, userID, volumeID uint) (*entities.Loan, error) {
	loan, err := tx.FindActiveLoan(ctx, userID, volumeID)
	if err != nil {
		return nil, fmt.Errorf("find active loan of volume %d: %w", volumeID, err)
	}
	if loan == nil {
		return nil, fmt.Errorf("volume %d: %w", volumeID, ErrLoanNotFound)
	}

	if err := tx.MarkReturned(ctx, loan, e.now()); err != nil {
		return nil, fmt.Errorf("return loan %d: %w", loan.ID, err)
	}
	return loan, nil
}
