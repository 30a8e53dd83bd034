// Package series provides database operations for manga series.
//
// # Usage
//
//	repo := series.NewRepository(db)
//	s, err := repo.CreateOrGet(ctx, &entities.Series{Title: "Naruto"})
package series

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// Repository handles series database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new series repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns the series or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uint) (*entities.Series, error) {
	var s entities.Series
	err := r.db.WithContext(ctx).First(&s, id).Error
	return found(&s, err)
}

// FindByTitle returns the series with exactly this title, or nil.
func (r *Repository) FindByTitle(ctx context.Context, title string) (*entities.Series, error) {
	var s entities.Series
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&s).Error
	return found(&s, err)
}

// FindByAPIID returns the series with this external id, or nil.
func (r *Repository) FindByAPIID(ctx context.Context, apiID string) (*entities.Series, error) {
	var s entities.Series
	err := r.db.WithContext(ctx).Where("api_id = ?", apiID).First(&s).Error
	return found(&s, err)
}

// CreateOrGet inserts the series unless one with the same title or api id exists,
// in which case the stored row is returned untouched.
func (r *Repository) CreateOrGet(ctx context.Context, s *entities.Series) (*entities.Series, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(s)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return s, nil
	}

	existing, err := r.FindByTitle(ctx, s.Title)
	if err != nil || existing != nil {
		return existing, err
	}
	if s.APIID != nil {
		existing, err = r.FindByAPIID(ctx, *s.APIID)
		if err != nil || existing != nil {
			return existing, err
		}
	}
	return nil, errors.New("series insert skipped but no conflicting row found")
}

// List returns all series ordered by title.
func (r *Repository) List(ctx context.Context) ([]entities.Series, error) {
	var out []entities.Series
	err := r.db.WithContext(ctx).Order("title ASC").Find(&out).Error
	return out, err
}

func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
