package catalog

import (
	"context"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// Store is the persistence contract of the catalog.
//
// Find* methods return (nil, nil) when nothing matches. CreateOrGet* insert the
// row unless a row with the same unique key exists, in which case that row is
// returned unmodified.
type Store interface {
	SeriesStore
	EditionStore
	VolumeStore
	OwnershipStore
	WishlistStore

	// WithinTx runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type SeriesStore interface {
	FindSeriesByID(ctx context.Context, id uint) (*entities.Series, error)
	FindSeriesByTitle(ctx context.Context, title string) (*entities.Series, error)
	CreateOrGetSeries(ctx context.Context, s *entities.Series) (*entities.Series, error)
	ListSeries(ctx context.Context) ([]entities.Series, error)
}

type EditionStore interface {
	FindEditionByID(ctx context.Context, id uint) (*entities.Edition, error)
	FindEditionBySeriesAndName(ctx context.Context, seriesID uint, name string) (*entities.Edition, error)
	CreateOrGetEdition(ctx context.Context, e *entities.Edition) (*entities.Edition, error)
	ListEditions(ctx context.Context, seriesID uint) ([]entities.Edition, error)
}

type VolumeStore interface {
	FindVolumeByID(ctx context.Context, id uint) (*entities.Volume, error)
	FindVolumeByISBN(ctx context.Context, isbn string) (*entities.Volume, error)
	FindVolumeByAPIID(ctx context.Context, apiID string) (*entities.Volume, error)
	FindVolumeByEditionAndNumber(ctx context.Context, editionID uint, number int) (*entities.Volume, error)
	CreateOrGetVolume(ctx context.Context, v *entities.Volume) (*entities.Volume, error)
	// AttachISBN makes isbn resolve to the volume on later lookups.
	AttachISBN(ctx context.Context, volumeID uint, isbn string) error
	ListVolumesByEdition(ctx context.Context, editionID uint) ([]entities.Volume, error)
}

type OwnershipStore interface {
	// AddToCollection returns true when the association is new.
	AddToCollection(ctx context.Context, userID, volumeID uint) (bool, error)
	// RemoveFromCollection returns false when the user did not own the volume.
	RemoveFromCollection(ctx context.Context, userID, volumeID uint) (bool, error)
	ListCollection(ctx context.Context, userID uint) ([]entities.Volume, error)
}

type WishlistStore interface {
	AddToWishlist(ctx context.Context, userID, volumeID uint) (bool, error)
	RemoveFromWishlist(ctx context.Context, userID, volumeID uint) (bool, error)
	ListWishlist(ctx context.Context, userID uint) ([]entities.Volume, error)
}
