package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/lookup"
	"github.com/mrlokans/mangashelf/internal/metrics"
)

// ResolveByISBN returns the catalogued volume for isbn, creating it and its
// series and edition from the provider when it is not yet known.
// Unknown to both store and provider: ErrBarcodeNotFound.
func (s *Service) ResolveByISBN(ctx context.Context, isbn string) (*entities.Volume, error) {
	return s.Resolve(ctx, VolumeKey{ISBN: isbn})
}

// ResolveByAPIID is ResolveByISBN keyed by the provider's id.
// Unknown to both store and provider: ErrNotFoundInExternalAPI.
func (s *Service) ResolveByAPIID(ctx context.Context, apiID string) (*entities.Volume, error) {
	return s.Resolve(ctx, VolumeKey{APIID: apiID})
}

// Resolve resolves a volume by whichever key is set. No ownership changes.
func (s *Service) Resolve(ctx context.Context, key VolumeKey) (*entities.Volume, error) {
	return s.resolve(ctx, key, 0, false)
}

// resolve optionally attaches the volume to userID in the same transaction that creates it.
func (s *Service) resolve(ctx context.Context, key VolumeKey, userID uint, attach bool) (*entities.Volume, error) {
	key, err := key.normalize()
	if err != nil {
		return nil, err
	}

	existing, err := findByKey(ctx, s.store, key)
	if err != nil {
		return nil, fmt.Errorf("find volume by %s: %w", key, err)
	}
	if existing != nil {
		metrics.VolumesResolved.WithLabelValues("store").Inc()
		if attach {
			added, err := s.store.AddToCollection(ctx, userID, existing.ID)
			if err != nil {
				return nil, fmt.Errorf("add volume %d to collection: %w", existing.ID, err)
			}
			if added {
				s.publishAdded(ctx, userID, existing.ID)
			}
		}
		return existing, nil
	}

	candidate, err := s.lookupCandidate(ctx, key)
	if err != nil {
		return nil, err
	}

	var (
		volume *entities.Volume
		added  bool
	)
	err = s.store.WithinTx(ctx, func(tx Store) error {
		found, err := findByKey(ctx, tx, key)
		if err != nil {
			return err
		}
		if found == nil {
			found, err = s.matchCandidate(ctx, tx, key, candidate)
			if err != nil {
				return err
			}
		}
		if found == nil {
			found, err = s.createFromCandidate(ctx, tx, key, candidate)
			if err != nil {
				return err
			}
		}
		volume = found

		if attach {
			added, err = tx.AddToCollection(ctx, userID, volume.ID)
			if err != nil {
				return fmt.Errorf("add volume %d to collection: %w", volume.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", key, err)
	}

	metrics.VolumesResolved.WithLabelValues("provider").Inc()
	s.logger.InfoContext(ctx, "volume resolved from provider",
		"key", key.String(), "volume_id", volume.ID, "edition_id", volume.EditionID)

	if added {
		s.publishAdded(ctx, userID, volume.ID)
	}
	return volume, nil
}

func findByKey(ctx context.Context, store VolumeStore, key VolumeKey) (*entities.Volume, error) {
	if key.ISBN != "" {
		return store.FindVolumeByISBN(ctx, key.ISBN)
	}
	return store.FindVolumeByAPIID(ctx, key.APIID)
}

// matchCandidate returns the volume already catalogued under the candidate's
// api id or ISBN, recording the requested ISBN against it. Nil when none matches.
func (s *Service) matchCandidate(ctx context.Context, tx Store, key VolumeKey, c *lookup.Candidate) (*entities.Volume, error) {
	var (
		volume *entities.Volume
		err    error
	)
	if c.APIID != "" {
		volume, err = tx.FindVolumeByAPIID(ctx, c.APIID)
		if err != nil {
			return nil, fmt.Errorf("find volume by api id %q: %w", c.APIID, err)
		}
	}
	if isbn := lookup.NormalizeISBN(c.ISBN); volume == nil && isbn != "" {
		volume, err = tx.FindVolumeByISBN(ctx, isbn)
		if err != nil {
			return nil, fmt.Errorf("find volume by isbn %q: %w", isbn, err)
		}
	}
	if volume == nil {
		return nil, nil
	}

	if key.ISBN != "" {
		if err := tx.AttachISBN(ctx, volume.ID, key.ISBN); err != nil {
			return nil, fmt.Errorf("attach isbn %s to volume %d: %w", key.ISBN, volume.ID, err)
		}
		if volume.ISBN == nil {
			volume.ISBN = entities.StringPtr(key.ISBN)
		}
	}
	s.logger.InfoContext(ctx, "requested key matches catalogued volume",
		"key", key.String(), "volume_id", volume.ID)
	return volume, nil
}

func (s *Service) lookupCandidate(ctx context.Context, key VolumeKey) (*lookup.Candidate, error) {
	var (
		candidate *lookup.Candidate
		err       error
		missing   error
	)
	if key.ISBN != "" {
		candidate, err = s.provider.FindByISBN(ctx, key.ISBN)
		missing = ErrBarcodeNotFound
	} else {
		candidate, err = s.provider.FindByAPIID(ctx, key.APIID)
		missing = ErrNotFoundInExternalAPI
	}

	if err != nil {
		metrics.ProviderLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}
	if candidate == nil {
		metrics.ProviderLookups.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("%w: %s", missing, key)
	}
	metrics.ProviderLookups.WithLabelValues("hit").Inc()
	return candidate, nil
}

func (s *Service) createFromCandidate(ctx context.Context, tx Store, key VolumeKey, c *lookup.Candidate) (*entities.Volume, error) {
	series, err := s.seriesForCandidate(ctx, tx, c)
	if err != nil {
		return nil, err
	}

	edition, err := s.defaultEdition(ctx, tx, series)
	if err != nil {
		return nil, err
	}

	volume, err := tx.CreateOrGetVolume(ctx, s.volumeFromCandidate(key, c, series, edition))
	if err != nil {
		return nil, fmt.Errorf("create volume: %w", err)
	}
	return volume, nil
}

// seriesForCandidate reuses the series with the derived title or creates it.
// An existing series is never updated.
func (s *Service) seriesForCandidate(ctx context.Context, tx Store, c *lookup.Candidate) (*entities.Series, error) {
	title := ExtractSeriesTitle(c.Title)
	if title == "" {
		title = s.opts.UnknownSeriesTitle
	}

	series, err := tx.FindSeriesByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("find series %q: %w", title, err)
	}
	if series != nil {
		return series, nil
	}

	series, err = tx.CreateOrGetSeries(ctx, &entities.Series{
		Title:    title,
		Authors:  authorsOrEmpty(c.Authors),
		CoverURL: c.CoverURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create series %q: %w", title, err)
	}
	return series, nil
}

func (s *Service) defaultEdition(ctx context.Context, tx Store, series *entities.Series) (*entities.Edition, error) {
	name := s.opts.DefaultEditionName

	edition, err := tx.FindEditionBySeriesAndName(ctx, series.ID, name)
	if err != nil {
		return nil, fmt.Errorf("find edition %q of series %d: %w", name, series.ID, err)
	}
	if edition != nil {
		return edition, nil
	}

	edition, err = tx.CreateOrGetEdition(ctx, &entities.Edition{
		SeriesID: series.ID,
		Name:     name,
		Language: s.opts.DefaultLanguage,
	})
	if err != nil {
		return nil, fmt.Errorf("create edition %q of series %d: %w", name, series.ID, err)
	}
	return edition, nil
}

func (s *Service) volumeFromCandidate(key VolumeKey, c *lookup.Candidate, series *entities.Series, edition *entities.Edition) *entities.Volume {
	v := &entities.Volume{
		EditionID:     edition.ID,
		Title:         strings.TrimSpace(c.Title),
		Authors:       authorsOrEmpty(c.Authors),
		Description:   c.Description,
		PublishedDate: c.PublishedDate,
		PageCount:     c.PageCount,
		CoverURL:      c.CoverURL,
	}
	if v.Title == "" {
		v.Title = series.Title
	}
	if n, ok := ExtractVolumeNumber(c.Title); ok {
		v.Number = &n
	}

	// The requested key is stored verbatim so the next lookup hits the fast path.
	if key.ISBN != "" {
		v.ISBN = entities.StringPtr(key.ISBN)
	} else if isbn := lookup.NormalizeISBN(c.ISBN); isbn != "" {
		v.ISBN = entities.StringPtr(isbn)
	}
	if key.APIID != "" {
		v.APIID = entities.StringPtr(key.APIID)
	} else {
		v.APIID = entities.StringPtr(c.APIID)
	}
	return v
}

func authorsOrEmpty(authors []string) []string {
	if authors == nil {
		return []string{}
	}
	return authors
}
