// Package events delivers domain notifications to interested parties.
//
// Engines publish after their transaction commits. A failing sink never
// fails the operation that produced the event.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// VolumeAddedToCollection is emitted whenever a volume is attached to a user's collection.
type VolumeAddedToCollection struct {
	VolumeID   uint      `json:"volume_id"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink receives events.
type Sink interface {
	Publish(ctx context.Context, evt VolumeAddedToCollection) error
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, evt VolumeAddedToCollection) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes events to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, evt VolumeAddedToCollection) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "volume added to collection", "volume_id", evt.VolumeID, "user_id", evt.UserID)
	return nil
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []VolumeAddedToCollection
}

func (r *Recorder) Publish(_ context.Context, evt VolumeAddedToCollection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []VolumeAddedToCollection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]VolumeAddedToCollection, len(r.events))
	copy(out, r.events)
	return out
}

// Publisher delivers a batch of events and logs failures.
type Publisher struct {
	Sink   Sink
	Logger *slog.Logger
}

// PublishAll sends each event to the sink. Errors are logged, never returned.
func (p Publisher) PublishAll(ctx context.Context, evts []VolumeAddedToCollection) {
	if p.Sink == nil {
		return
	}
	for _, evt := range evts {
		if err := p.Sink.Publish(ctx, evt); err != nil {
			logger := p.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.WarnContext(ctx, "event delivery failed", "volume_id", evt.VolumeID, "user_id", evt.UserID, "error", err)
		}
	}
}
