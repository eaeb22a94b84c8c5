package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
	"github.com/yourusername/yt-playlist-go/internal/infrastructure"
)

type queueFixture struct {
	queue      *QueueManager
	repo       *infrastructure.SQLiteRepository
	downloader *mockDownloader
	playlist   *domain.Playlist
}

func newQueueFixture(t *testing.T, config *domain.QueueConfig) *queueFixture {
	t.Helper()
	tmpDir := t.TempDir()

	repo, err := infrastructure.NewSQLiteRepository(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	pl := domain.NewPlaylist("https://www.youtube.com/playlist?list=PL1", domain.QualityHigh, "")
	pl.MarkReady("Test Playlist", filepath.Join(tmpDir, "out"), 0)
	require.NoError(t, repo.CreatePlaylist(pl))

	downloader := newMockDownloader()
	downloadConfig := &domain.DownloadConfig{
		BaseDir:         tmpDir,
		MaxRetries:      0,
		RetryDelay:      time.Millisecond,
		ConcurrentLimit: 2,
	}
	manager := NewDownloadManager(
		repo, repo, downloader,
		infrastructure.NewCookieStore(filepath.Join(tmpDir, "cookies")),
		nil, downloadConfig, zap.NewNop(),
	)
	queue := NewQueueManager(repo, manager, config, nil)

	return &queueFixture{queue: queue, repo: repo, downloader: downloader, playlist: pl}
}

func TestQueueManager_StartStop(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{CheckInterval: 10 * time.Millisecond})

	require.NoError(t, f.queue.Start(context.Background()))
	assert.True(t, f.queue.IsRunning())

	// Double start is an error
	assert.Error(t, f.queue.Start(context.Background()))

	require.NoError(t, f.queue.Stop())
	assert.False(t, f.queue.IsRunning())

	// Double stop is an error
	assert.Error(t, f.queue.Stop())
}

func TestQueueManager_ProcessesPendingDownloads(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{CheckInterval: 10 * time.Millisecond})

	dl1 := domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "a", Title: "First"}, 1)
	dl2 := domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "b", Title: "Second"}, 2)
	require.NoError(t, f.repo.CreateBatch([]*domain.Download{dl1, dl2}))

	require.NoError(t, f.queue.Start(context.Background()))
	defer f.queue.Stop()

	require.Eventually(t, func() bool {
		stats, err := f.repo.GetStats()
		return err == nil && stats.Completed == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestQueueManager_ProcessesPlaylistInIndexOrder(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{CheckInterval: 10 * time.Millisecond})

	downloads := []*domain.Download{
		domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "c", Title: "Third"}, 3),
		domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "a", Title: "First"}, 1),
		domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "b", Title: "Second"}, 2),
	}
	require.NoError(t, f.repo.CreateBatch(downloads))

	require.NoError(t, f.queue.Start(context.Background()))
	defer f.queue.Stop()

	require.Eventually(t, func() bool {
		stats, err := f.repo.GetStats()
		return err == nil && stats.Completed == 3
	}, 5*time.Second, 10*time.Millisecond)

	// A playlist's batch runs through one worker in index order
	f.downloader.mu.Lock()
	calls := append([]string(nil), f.downloader.calls...)
	f.downloader.mu.Unlock()

	byIndex := map[string]int{}
	for _, dl := range downloads {
		byIndex[dl.ID] = dl.Index
	}
	require.Len(t, calls, 3)
	assert.Equal(t, 1, byIndex[calls[0]])
	assert.Equal(t, 2, byIndex[calls[1]])
	assert.Equal(t, 3, byIndex[calls[2]])
}

func TestQueueManager_ResetsOrphansOnStart(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{CheckInterval: 10 * time.Millisecond})

	stuck := domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "a", Title: "Stuck"}, 1)
	stuck.MarkProcessing()
	require.NoError(t, f.repo.Create(stuck))

	require.NoError(t, f.queue.Start(context.Background()))
	defer f.queue.Stop()

	// Requeued on start, then picked up and completed
	require.Eventually(t, func() bool {
		found, err := f.repo.FindByID(stuck.ID)
		return err == nil && found.Status == domain.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestQueueManager_AutoExitsWhenEmpty(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{
		CheckInterval:   10 * time.Millisecond,
		AutoExitOnEmpty: true,
		EmptyWaitTime:   30 * time.Millisecond,
	})

	require.NoError(t, f.queue.Start(context.Background()))

	select {
	case <-f.queue.WaitForExit():
	case <-time.After(5 * time.Second):
		t.Fatal("queue manager did not auto-exit on empty queue")
	}
}

func TestQueueManager_StaysUpWithoutAutoExit(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{
		CheckInterval:   10 * time.Millisecond,
		AutoExitOnEmpty: false,
		EmptyWaitTime:   20 * time.Millisecond,
	})

	require.NoError(t, f.queue.Start(context.Background()))
	defer f.queue.Stop()

	select {
	case <-f.queue.WaitForExit():
		t.Fatal("queue manager exited with auto-exit disabled")
	case <-time.After(150 * time.Millisecond):
	}
	assert.True(t, f.queue.IsRunning())
}

func TestQueueManager_DoesNotDispatchTwice(t *testing.T) {
	f := newQueueFixture(t, &domain.QueueConfig{CheckInterval: 10 * time.Millisecond})

	// Block the downloader so the pending download stays queued in the
	// store across several scan ticks
	f.downloader.block = make(chan struct{})

	dl := domain.NewDownload(f.playlist.ID, domain.PlaylistEntry{ID: "a", Title: "First"}, 1)
	require.NoError(t, f.repo.Create(dl))

	require.NoError(t, f.queue.Start(context.Background()))

	require.Eventually(t, func() bool {
		return f.downloader.callCount(dl.ID) == 1
	}, 5*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, f.downloader.callCount(dl.ID))

	close(f.downloader.block)
	defer f.queue.Stop()

	require.Eventually(t, func() bool {
		found, err := f.repo.FindByID(dl.ID)
		return err == nil && found.Status == domain.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}
