// Package loans provides database operations for loan records.
//
// A partial unique index on (user_id, volume_id) WHERE returned_at IS NULL
// guarantees at most one active loan per volume; see database.NewDatabase.
package loans

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// ErrActiveLoanExists is returned by Create when the volume is already out.
var ErrActiveLoanExists = errors.New("active loan already exists")

// ErrNoActiveLoan is returned by MarkReturned when the loan is already closed.
var ErrNoActiveLoan = errors.New("no active loan")

type Status string

const (
	StatusAll      Status = "all"
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
)

// Repository handles loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActive returns the open loan for (userID, volumeID), or nil.
func (r *Repository) FindActive(ctx context.Context, userID, volumeID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND volume_id = ? AND returned_at IS NULL", userID, volumeID).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Create persists a new loan. A unique-index violation maps to ErrActiveLoanExists.
func (r *Repository) Create(ctx context.Context, loan *entities.Loan) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(loan).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrActiveLoanExists
	}
	return err
}

// MarkReturned sets returned_at on an open loan and leaves every other column alone.
func (r *Repository) MarkReturned(ctx context.Context, loan *entities.Loan, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Loan{}).
		Where("id = ? AND returned_at IS NULL", loan.ID).
		Update("returned_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoActiveLoan
	}
	loan.ReturnedAt = &at
	return nil
}

// ListByUser returns the user's loans joined with their volume, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uint, status Status) ([]entities.Loan, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	switch status {
	case StatusActive:
		query = query.Where("returned_at IS NULL")
	case StatusReturned:
		query = query.Where("returned_at IS NOT NULL")
	}

	var out []entities.Loan
	err := query.
		Preload("Volume").
		Order("loaned_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// CountActive returns the number of volumes currently lent out across all users.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Loan{}).
		Where("returned_at IS NULL").
		Count(&count).Error
	return count, err
}
