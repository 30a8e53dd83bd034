package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/entities"
)

// VolumeSource loads a volume by id; *catalog.Service satisfies it.
type VolumeSource interface {
	Volume(ctx context.Context, id uint) (*entities.Volume, error)
}

// CoverFetcher stores a cover locally; *covers.Cache satisfies it.
type CoverFetcher interface {
	GetCover(ctx context.Context, volumeID uint, coverURL string) (string, error)
}

// CacheCoverTask downloads the cover of a volume that was just added to a collection.
type CacheCoverTask struct {
	VolumeID uint `json:"volume_id"`
}

// Config returns the queue configuration for cover caching tasks.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CacheCoverProcessor creates a processor function for CacheCoverTask.
// A volume that no longer exists or has no cover completes without retry.
func CacheCoverProcessor(volumes VolumeSource, fetcher CoverFetcher, logger *slog.Logger) backlite.QueueProcessor[CacheCoverTask] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, task CacheCoverTask) error {
		if volumes == nil || fetcher == nil {
			return errors.New("cover cache not configured")
		}

		volume, err := volumes.Volume(ctx, task.VolumeID)
		if errors.Is(err, catalog.ErrVolumeNotFound) {
			logger.WarnContext(ctx, "skipping cover of missing volume", "volume_id", task.VolumeID)
			return nil
		}
		if err != nil {
			return err
		}
		if volume.CoverURL == "" {
			return nil
		}

		path, err := fetcher.GetCover(ctx, volume.ID, volume.CoverURL)
		if err != nil {
			return fmt.Errorf("cache cover: %w", err)
		}

		logger.DebugContext(ctx, "cover cached", "volume_id", volume.ID, "path", path)
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover caching tasks.
func NewCacheCoverQueue(volumes VolumeSource, fetcher CoverFetcher, logger *slog.Logger) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(volumes, fetcher, logger))
}
