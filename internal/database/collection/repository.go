// Package collection provides database operations for volume ownership.
//
// Ownership is a (user_id, volume_id) association stored in user_volumes.
package collection

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// Repository handles ownership database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collection repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add attaches a volume to a user's collection. Adding an owned volume is a no-op.
// Returns true when a new association was created.
func (r *Repository) Add(ctx context.Context, userID, volumeID uint) (bool, error) {
	entry := entities.CollectionEntry{UserID: userID, VolumeID: volumeID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&entry)
	return result.RowsAffected > 0, result.Error
}

// Remove detaches a volume. Returns false when the user did not own it.
func (r *Repository) Remove(ctx context.Context, userID, volumeID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND volume_id = ?", userID, volumeID).
		Delete(&entities.CollectionEntry{})
	return result.RowsAffected > 0, result.Error
}

// Owns reports whether the user owns the volume.
func (r *Repository) Owns(ctx context.Context, userID, volumeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.CollectionEntry{}).
		Where("user_id = ? AND volume_id = ?", userID, volumeID).
		Count(&count).Error
	return count > 0, err
}

// ListVolumes returns the user's volumes joined with edition and series,
// ordered by series title then volume number.
func (r *Repository) ListVolumes(ctx context.Context, userID uint) ([]entities.Volume, error) {
	var out []entities.Volume
	err := r.db.WithContext(ctx).
		Joins("JOIN user_volumes ON user_volumes.volume_id = volumes.id").
		Joins("JOIN editions ON editions.id = volumes.edition_id").
		Joins("JOIN series ON series.id = editions.series_id").
		Where("user_volumes.user_id = ?", userID).
		Order("series.title ASC, volumes.number ASC, volumes.id ASC").
		Preload("Edition.Series").
		Find(&out).Error
	return out, err
}
