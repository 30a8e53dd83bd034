package events

import "context"

// CoverEnqueuer schedules background cover caching for a volume.
type CoverEnqueuer interface {
	EnqueueCoverCache(ctx context.Context, volumeID uint) error
}

// TaskSink turns collection additions into cover caching tasks.
type TaskSink struct {
	Enqueuer CoverEnqueuer
}

func (s TaskSink) Publish(ctx context.Context, evt VolumeAddedToCollection) error {
	return s.Enqueuer.EnqueueCoverCache(ctx, evt.VolumeID)
}
