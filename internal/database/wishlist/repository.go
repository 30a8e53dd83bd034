// Package wishlist provides database operations for wanted volumes.
package wishlist

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mangashelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add puts a volume on the user's wishlist. Returns true when newly added.
func (r *Repository) Add(ctx context.Context, userID, volumeID uint) (bool, error) {
	entry := entities.WishlistEntry{UserID: userID, VolumeID: volumeID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&entry)
	return result.RowsAffected > 0, result.Error
}

// Remove takes a volume off the wishlist. Returns false when it was not there.
func (r *Repository) Remove(ctx context.Context, userID, volumeID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND volume_id = ?", userID, volumeID).
		Delete(&entities.WishlistEntry{})
	return result.RowsAffected > 0, result.Error
}

// ListVolumes returns wished volumes, most recently added first.
func (r *Repository) ListVolumes(ctx context.Context, userID uint) ([]entities.Volume, error) {
	var out []entities.Volume
	err := r.db.WithContext(ctx).
		Joins("JOIN wishlist_volumes ON wishlist_volumes.volume_id = volumes.id").
		Where("wishlist_volumes.user_id = ?", userID).
		Order("wishlist_volumes.created_at DESC, volumes.id DESC").
		Preload("Edition.Series").
		Find(&out).Error
	return out, err
}
