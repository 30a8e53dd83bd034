package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStreamSink_Publish(t *testing.T) {
	server := miniredis.RunT(t)

	sink, err := NewRedisStreamSink(RedisStreamConfig{Addr: server.Addr(), Stream: "mangashelf:collection"})
	require.NoError(t, err)
	defer sink.Close()

	occurred := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err = sink.Publish(context.Background(), VolumeAddedToCollection{VolumeID: 12, UserID: 3, OccurredAt: occurred})
	require.NoError(t, err)

	entries, err := server.Stream("mangashelf:collection")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := map[string]string{}
	for i := 0; i+1 < len(entries[0].Values); i += 2 {
		values[entries[0].Values[i]] = entries[0].Values[i+1]
	}
	assert.Equal(t, eventTypeVolumeAdded, values["type"])
	assert.Equal(t, "12", values["volume_id"])
	assert.Equal(t, "3", values["user_id"])
	assert.Equal(t, "2024-05-01T12:00:00Z", values["occurred_at"])
	assert.NotEmpty(t, values["event_id"])
}

func TestRedisStreamSink_Unreachable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	sink, err := NewRedisStreamSink(RedisStreamConfig{Addr: addr, Stream: "s"})
	require.NoError(t, err)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, sink.Publish(ctx, VolumeAddedToCollection{VolumeID: 1}))
}

func TestNewRedisStreamSink_Validation(t *testing.T) {
	_, err := NewRedisStreamSink(RedisStreamConfig{Stream: "s"})
	assert.Error(t, err)

	_, err = NewRedisStreamSink(RedisStreamConfig{Addr: "localhost:6379"})
	assert.Error(t, err)
}
