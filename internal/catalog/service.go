// Package catalog resolves external lookups into a deduplicated
// Series → Edition → Volume hierarchy and manages what users own or want.
//
// # Resolution
//
// A volume is looked up in the store first. Only when it is missing is the
// provider called, outside any transaction. The series, its default edition
// and the volume are then created-or-reused inside one transaction that
// re-checks the volume key, so concurrent resolutions converge on the same rows.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mrlokans/mangashelf/internal/events"
	"github.com/mrlokans/mangashelf/internal/lookup"
)

// Options holds catalog naming defaults.
type Options struct {
	DefaultEditionName string
	DefaultLanguage    string
	UnknownSeriesTitle string
}

// DefaultOptions returns the defaults used when a field is left empty.
func DefaultOptions() Options {
	return Options{
		DefaultEditionName: "Standard",
		DefaultLanguage:    "fr",
		UnknownSeriesTitle: "Unknown Series",
	}
}

// Service is the catalog resolution engine. It holds no per-request state.
type Service struct {
	store     Store
	provider  lookup.Provider
	publisher events.Publisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

// NewService creates a catalog service. sink may be nil.
func NewService(store Store, provider lookup.Provider, sink events.Sink, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultOptions()
	if opts.DefaultEditionName == "" {
		opts.DefaultEditionName = defaults.DefaultEditionName
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = defaults.DefaultLanguage
	}
	if opts.UnknownSeriesTitle == "" {
		opts.UnknownSeriesTitle = defaults.UnknownSeriesTitle
	}

	return &Service{
		store:     store,
		provider:  provider,
		publisher: events.Publisher{Sink: sink, Logger: logger},
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// VolumeKey identifies a volume by ISBN or external API id. ISBN wins when both are set.
type VolumeKey struct {
	ISBN  string `json:"isbn,omitempty"`
	APIID string `json:"api_id,omitempty"`
}

func (k VolumeKey) String() string {
	if k.ISBN != "" {
		return "isbn " + k.ISBN
	}
	return "api id " + k.APIID
}

func (k VolumeKey) normalize() (VolumeKey, error) {
	if isbn := strings.TrimSpace(k.ISBN); isbn != "" {
		if normalized := lookup.NormalizeISBN(isbn); normalized != "" {
			isbn = normalized
		}
		return VolumeKey{ISBN: isbn}, nil
	}
	if apiID := strings.TrimSpace(k.APIID); apiID != "" {
		return VolumeKey{APIID: apiID}, nil
	}
	return VolumeKey{}, ErrMissingKey
}

func (s *Service) publishAdded(ctx context.Context, userID uint, volumeIDs ...uint) {
	evts := make([]events.VolumeAddedToCollection, 0, len(volumeIDs))
	for _, id := range volumeIDs {
		evts = append(evts, events.VolumeAddedToCollection{VolumeID: id, UserID: userID, OccurredAt: s.now()})
	}
	s.publisher.PublishAll(ctx, evts)
}

// Search passes a free-text query through to the provider.
func (s *Service) Search(ctx context.Context, query string) ([]lookup.Candidate, error) {
	candidates, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return candidates, nil
}
