package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const eventTypeVolumeAdded = "volume_added_to_collection"

// RedisStreamConfig configures the stream sink.
type RedisStreamConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64
}

// RedisStreamSink appends events to a Redis stream for external consumers.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamSink connects to Redis. It does not ping; the first Publish surfaces connectivity errors.
func NewRedisStreamSink(cfg RedisStreamConfig) (*RedisStreamSink, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		return nil, errors.New("event stream required")
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}

	return &RedisStreamSink{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password, DB: cfg.DB}),
		stream: stream,
		maxLen: maxLen,
	}, nil
}

func (s *RedisStreamSink) Publish(ctx context.Context, evt VolumeAddedToCollection) error {
	occurred := evt.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id":    uuid.NewString(),
			"type":        eventTypeVolumeAdded,
			"volume_id":   strconv.FormatUint(uint64(evt.VolumeID), 10),
			"user_id":     strconv.FormatUint(uint64(evt.UserID), 10),
			"occurred_at": occurred.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}
