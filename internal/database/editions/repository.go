// Package editions provides database operations for series editions.
package editions

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// Repository handles edition database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new editions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns the edition with its series, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uint) (*entities.Edition, error) {
	var e entities.Edition
	err := r.db.WithContext(ctx).Preload("Series").First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindBySeriesAndName returns the edition named name within a series, or nil.
func (r *Repository) FindBySeriesAndName(ctx context.Context, seriesID uint, name string) (*entities.Edition, error) {
	var e entities.Edition
	err := r.db.WithContext(ctx).
		Where("series_id = ? AND name = ?", seriesID, name).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateOrGet inserts the edition unless (series_id, name) already exists.
func (r *Repository) CreateOrGet(ctx context.Context, e *entities.Edition) (*entities.Edition, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(e)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return e, nil
	}

	existing, err := r.FindBySeriesAndName(ctx, e.SeriesID, e.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("edition insert skipped but no conflicting row found")
	}
	return existing, nil
}

// ListBySeries returns the editions of a series ordered by name.
func (r *Repository) ListBySeries(ctx context.Context, seriesID uint) ([]entities.Edition, error) {
	var out []entities.Edition
	err := r.db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Order("name ASC").
		Find(&out).Error
	return out, err
}
