// Package volumes provides database operations for individual volumes.
//
// # Usage
//
//	repo := volumes.NewRepository(db)
//	v, err := repo.FindByISBN(ctx, "9782505004479")
//	if v == nil {
//		// not catalogued yet
//	}
package volumes

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// LocalNumberIndex keeps (edition_id, number) unique among volumes that carry
// neither an ISBN nor an api id.
const LocalNumberIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_volumes_local_number
	ON volumes (edition_id, number) WHERE isbn IS NULL AND api_id IS NULL AND number IS NOT NULL`

// Repository handles volume database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new volumes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns the volume joined with its edition and series, or nil.
func (r *Repository) FindByID(ctx context.Context, id uint) (*entities.Volume, error) {
	var v entities.Volume
	err := r.db.WithContext(ctx).Preload("Edition.Series").First(&v, id).Error
	return found(&v, err)
}

// FindByISBN returns the volume with this ISBN or ISBN alias, or nil.
func (r *Repository) FindByISBN(ctx context.Context, isbn string) (*entities.Volume, error) {
	var v entities.Volume
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&v).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return found(&v, err)
	}

	aliased := r.db.Model(&entities.VolumeISBN{}).Select("volume_id").Where("isbn = ?", isbn)
	v = entities.Volume{}
	err = r.db.WithContext(ctx).Where("id IN (?)", aliased).First(&v).Error
	return found(&v, err)
}

// FillISBN sets the volume's ISBN if it has none. Reports whether it was set.
func (r *Repository) FillISBN(ctx context.Context, volumeID uint, isbn string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Volume{}).
		Where("id = ? AND isbn IS NULL", volumeID).
		Update("isbn", isbn)
	return result.RowsAffected > 0, result.Error
}

// AddISBNAlias records isbn as another identifier of the volume. Existing aliases are kept.
func (r *Repository) AddISBNAlias(ctx context.Context, volumeID uint, isbn string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.VolumeISBN{ISBN: isbn, VolumeID: volumeID}).Error
}

// FindByAPIID returns the volume with this external id, or nil.
func (r *Repository) FindByAPIID(ctx context.Context, apiID string) (*entities.Volume, error) {
	var v entities.Volume
	err := r.db.WithContext(ctx).Where("api_id = ?", apiID).First(&v).Error
	return found(&v, err)
}

// FindByEditionAndNumber returns the first volume numbered number in an edition, or nil.
func (r *Repository) FindByEditionAndNumber(ctx context.Context, editionID uint, number int) (*entities.Volume, error) {
	var v entities.Volume
	err := r.db.WithContext(ctx).
		Where("edition_id = ? AND number = ?", editionID, number).
		Order("id ASC").
		First(&v).Error
	return found(&v, err)
}

// CreateOrGet inserts the volume unless its ISBN or api id is already catalogued,
// or, for a volume with neither, its number already exists in the edition.
func (r *Repository) CreateOrGet(ctx context.Context, v *entities.Volume) (*entities.Volume, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(v)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return v, nil
	}

	if v.ISBN != nil {
		existing, err := r.FindByISBN(ctx, *v.ISBN)
		if err != nil || existing != nil {
			return existing, err
		}
	}
	if v.APIID != nil {
		existing, err := r.FindByAPIID(ctx, *v.APIID)
		if err != nil || existing != nil {
			return existing, err
		}
	}
	if v.ISBN == nil && v.APIID == nil && v.Number != nil {
		var existing entities.Volume
		err := r.db.WithContext(ctx).
			Where("edition_id = ? AND number = ? AND isbn IS NULL AND api_id IS NULL", v.EditionID, *v.Number).
			First(&existing).Error
		if local, err := found(&existing, err); err != nil || local != nil {
			return local, err
		}
	}
	return nil, errors.New("volume insert skipped but no conflicting row found")
}

// ListByEdition returns the volumes of an edition ordered by number.
func (r *Repository) ListByEdition(ctx context.Context, editionID uint) ([]entities.Volume, error) {
	var out []entities.Volume
	err := r.db.WithContext(ctx).
		Where("edition_id = ?", editionID).
		Order("number ASC, id ASC").
		Find(&out).Error
	return out, err
}

func found(v *entities.Volume, err error) (*entities.Volume, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
