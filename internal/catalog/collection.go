package catalog

import (
	"context"
	"fmt"

	"github.com/mrlokans/mangashelf/internal/entities"
)

// AddToCollection resolves the volume and attaches it to the user's collection.
// Adding a volume the user already owns is not an error and publishes no event.
func (s *Service) AddToCollection(ctx context.Context, userID uint, key VolumeKey) (*entities.Volume, error) {
	return s.resolve(ctx, key, userID, true)
}

// RemoveFromCollection detaches a volume from the user's collection.
func (s *Service) RemoveFromCollection(ctx context.Context, userID, volumeID uint) error {
	removed, err := s.store.RemoveFromCollection(ctx, userID, volumeID)
	if err != nil {
		return fmt.Errorf("remove volume %d from collection: %w", volumeID, err)
	}
	if !removed {
		return ErrNotInCollection
	}
	return nil
}

// Collection lists the user's volumes joined with edition and series.
func (s *Service) Collection(ctx context.Context, userID uint) ([]entities.Volume, error) {
	return s.store.ListCollection(ctx, userID)
}

// AddLocalVolumesToEdition creates or reuses numbered volumes in an edition
// without consulting the provider and attaches all of them to the user's
// collection in one transaction. One event per volume is published after commit.
func (s *Service) AddLocalVolumesToEdition(ctx context.Context, editionID uint, numbers []int, userID uint) ([]entities.Volume, error) {
	numbers = uniqueNumbers(numbers)
	for _, n := range numbers {
		if n < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidVolumeNumber, n)
		}
	}

	var added []entities.Volume
	err := s.store.WithinTx(ctx, func(tx Store) error {
		edition, err := tx.FindEditionByID(ctx, editionID)
		if err != nil {
			return fmt.Errorf("find edition %d: %w", editionID, err)
		}
		if edition == nil {
			return ErrEditionNotFound
		}

		series, err := tx.FindSeriesByID(ctx, edition.SeriesID)
		if err != nil {
			return fmt.Errorf("find series %d: %w", edition.SeriesID, err)
		}
		if series == nil {
			return ErrSeriesNotFound
		}

		added = make([]entities.Volume, 0, len(numbers))
		for _, n := range numbers {
			volume, err := localVolume(ctx, tx, edition, series, n)
			if err != nil {
				return err
			}
			if _, err := tx.AddToCollection(ctx, userID, volume.ID); err != nil {
				return fmt.Errorf("add volume %d to collection: %w", volume.ID, err)
			}
			added = append(added, *volume)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(added))
	for i := range added {
		ids[i] = added[i].ID
	}
	s.publishAdded(ctx, userID, ids...)

	return added, nil
}

func localVolume(ctx context.Context, tx Store, edition *entities.Edition, series *entities.Series, number int) (*entities.Volume, error) {
	existing, err := tx.FindVolumeByEditionAndNumber(ctx, edition.ID, number)
	if err != nil {
		return nil, fmt.Errorf("find volume %d of edition %d: %w", number, edition.ID, err)
	}
	if existing != nil {
		return existing, nil
	}

	n := number
	volume, err := tx.CreateOrGetVolume(ctx, &entities.Volume{
		EditionID: edition.ID,
		Number:    &n,
		Title:     fmt.Sprintf("%s Vol. %d", series.Title, number),
		Authors:   authorsOrEmpty(series.Authors),
		CoverURL:  series.CoverURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create volume %d of edition %d: %w", number, edition.ID, err)
	}
	return volume, nil
}

func uniqueNumbers(numbers []int) []int {
	seen := make(map[int]struct{}, len(numbers))
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// AddToWishlist puts an existing volume on the user's wishlist.
func (s *Service) AddToWishlist(ctx context.Context, userID, volumeID uint) error {
	volume, err := s.store.FindVolumeByID(ctx, volumeID)
	if err != nil {
		return fmt.Errorf("find volume %d: %w", volumeID, err)
	}
	if volume == nil {
		return ErrVolumeNotFound
	}
	if _, err := s.store.AddToWishlist(ctx, userID, volumeID); err != nil {
		return fmt.Errorf("add volume %d to wishlist: %w", volumeID, err)
	}
	return nil
}

// RemoveFromWishlist takes a volume off the user's wishlist.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, volumeID uint) error {
	removed, err := s.store.RemoveFromWishlist(ctx, userID, volumeID)
	if err != nil {
		return fmt.Errorf("remove volume %d from wishlist: %w", volumeID, err)
	}
	if !removed {
		return ErrNotInWishlist
	}
	return nil
}

// Wishlist lists the user's wanted volumes.
func (s *Service) Wishlist(ctx context.Context, userID uint) ([]entities.Volume, error) {
	return s.store.ListWishlist(ctx, userID)
}

// Volume returns one volume joined with its edition and series.
func (s *Service) Volume(ctx context.Context, id uint) (*entities.Volume, error) {
	volume, err := s.store.FindVolumeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find volume %d: %w", id, err)
	}
	if volume == nil {
		return nil, ErrVolumeNotFound
	}
	return volume, nil
}

// ListSeries returns every catalogued series.
func (s *Service) ListSeries(ctx context.Context) ([]entities.Series, error) {
	return s.store.ListSeries(ctx)
}

// EditionDetail is an edition with its volumes.
type EditionDetail struct {
	entities.Edition
	Volumes []entities.Volume `json:"volumes"`
}

// SeriesDetail is a series with its editions and their volumes.
type SeriesDetail struct {
	entities.Series
	Editions []EditionDetail `json:"editions"`
}

// Series returns a series with its editions and volumes.
func (s *Service) Series(ctx context.Context, id uint) (*SeriesDetail, error) {
	series, err := s.store.FindSeriesByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find series %d: %w", id, err)
	}
	if series == nil {
		return nil, ErrSeriesNotFound
	}

	editions, err := s.store.ListEditions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list editions of series %d: %w", id, err)
	}

	detail := &SeriesDetail{Series: *series, Editions: make([]EditionDetail, 0, len(editions))}
	for _, edition := range editions {
		volumes, err := s.store.ListVolumesByEdition(ctx, edition.ID)
		if err != nil {
			return nil, fmt.Errorf("list volumes of edition %d: %w", edition.ID, err)
		}
		detail.Editions = append(detail.Editions, EditionDetail{Edition: edition, Volumes: volumes})
	}
	return detail, nil
}
