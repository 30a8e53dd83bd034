package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/logging"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test-tasks.db"), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDatabasePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "shelf-tasks.db"), DatabasePath(filepath.Join("data", "shelf.db")))
	assert.Equal(t, "shelf-tasks", DatabasePath("shelf"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(tasksDBPath, cfg, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStop_NotStarted(t *testing.T) {
	client := newTestClient(t)

	assert.True(t, client.Stop(context.Background()))
}

type fakeVolumes map[uint]*entities.Volume

func (f fakeVolumes) Volume(_ context.Context, id uint) (*entities.Volume, error) {
	v, ok := f[id]
	if !ok {
		return nil, catalog.ErrVolumeNotFound
	}
	return v, nil
}

type fetchCall struct {
	volumeID uint
	url      string
}

type fakeFetcher struct {
	calls chan fetchCall
	err   error
}

func (f *fakeFetcher) GetCover(_ context.Context, volumeID uint, coverURL string) (string, error) {
	f.calls <- fetchCall{volumeID: volumeID, url: coverURL}
	return "/tmp/cover.jpg", f.err
}

func TestEnqueueCoverCache_RunsProcessor(t *testing.T) {
	client := newTestClient(t)
	fetcher := &fakeFetcher{calls: make(chan fetchCall, 1)}
	volumes := fakeVolumes{7: {ID: 7, CoverURL: "https://covers.example/7.jpg"}}
	client.Register(NewCacheCoverQueue(volumes, fetcher, logging.Discard()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	require.NoError(t, client.EnqueueCoverCache(ctx, 7))

	select {
	case call := <-fetcher.calls:
		assert.Equal(t, uint(7), call.volumeID)
		assert.Equal(t, "https://covers.example/7.jpg", call.url)
	case <-time.After(5 * time.Second):
		t.Fatal("cover task was not executed within timeout")
	}
}

func TestCacheCoverProcessor(t *testing.T) {
	ctx := context.Background()
	volumes := fakeVolumes{
		1: {ID: 1, CoverURL: "https://covers.example/1.jpg"},
		2: {ID: 2},
	}

	t.Run("fetches the cover", func(t *testing.T) {
		fetcher := &fakeFetcher{calls: make(chan fetchCall, 1)}
		err := CacheCoverProcessor(volumes, fetcher, logging.Discard())(ctx, CacheCoverTask{VolumeID: 1})
		require.NoError(t, err)
		assert.Len(t, fetcher.calls, 1)
	})

	t.Run("volume without cover is a no-op", func(t *testing.T) {
		fetcher := &fakeFetcher{calls: make(chan fetchCall, 1)}
		err := CacheCoverProcessor(volumes, fetcher, logging.Discard())(ctx, CacheCoverTask{VolumeID: 2})
		require.NoError(t, err)
		assert.Empty(t, fetcher.calls)
	})

	t.Run("missing volume completes without retry", func(t *testing.T) {
		fetcher := &fakeFetcher{calls: make(chan fetchCall, 1)}
		err := CacheCoverProcessor(volumes, fetcher, logging.Discard())(ctx, CacheCoverTask{VolumeID: 99})
		assert.NoError(t, err)
	})

	t.Run("fetch failure is retried", func(t *testing.T) {
		fetcher := &fakeFetcher{calls: make(chan fetchCall, 1), err: errors.New("status 503")}
		err := CacheCoverProcessor(volumes, fetcher, logging.Discard())(ctx, CacheCoverTask{VolumeID: 1})
		assert.Error(t, err)
	})

	t.Run("not configured", func(t *testing.T) {
		err := CacheCoverProcessor(nil, nil, nil)(ctx, CacheCoverTask{VolumeID: 1})
		assert.Error(t, err)
	})
}

type fakeCleaner struct {
	retention time.Duration
	deleted   int64
	err       error
	logged    []error
}

func (f *fakeCleaner) LogCleanup(_ int64, err error) {
	f.logged = append(f.logged, err)
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.retention = retention
	return f.deleted, f.err
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("uses task retention", func(t *testing.T) {
		cleaner := &fakeCleaner{deleted: 4}
		err := CleanupAuditEventsProcessor(cleaner, logging.Discard())(ctx, CleanupAuditEventsTask{RetentionDays: 7})
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, cleaner.retention)
		assert.Equal(t, []error{nil}, cleaner.logged)
	})

	t.Run("defaults to thirty days", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		err := CleanupAuditEventsProcessor(cleaner, logging.Discard())(ctx, CleanupAuditEventsTask{})
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	})

	t.Run("propagates cleaner errors", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("locked")}
		err := CleanupAuditEventsProcessor(cleaner, logging.Discard())(ctx, CleanupAuditEventsTask{})
		assert.Error(t, err)
		require.Len(t, cleaner.logged, 1)
		assert.Error(t, cleaner.logged[0])
	})
}

func TestEnqueueAuditCleanup(t *testing.T) {
	client := newTestClient(t)
	client.Register(NewCleanupAuditEventsQueue(&fakeCleaner{}, logging.Discard()))

	id, err := client.EnqueueAuditCleanup(context.Background(), 14)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	client := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestQueueConfigs(t *testing.T) {
	cover := CacheCoverTask{VolumeID: 1}.Config()
	assert.Equal(t, "cache_cover", cover.Name)
	assert.Equal(t, 3, cover.MaxAttempts)
	assert.NotNil(t, cover.Retention)

	cleanup := CleanupAuditEventsTask{}.Config()
	assert.Equal(t, "cleanup_audit_events", cleanup.Name)
	assert.Equal(t, 2*time.Minute, cleanup.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Tasks{Workers: 4, ReleaseAfter: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, 3, cfg.MaxRetries, "zero values keep the default")
}
