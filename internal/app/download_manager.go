package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
	"github.com/yourusername/yt-playlist-go/internal/infrastructure"
)

// DownloadManager manages download operations
type DownloadManager struct {
	downloads  domain.DownloadRepository
	playlists  domain.PlaylistRepository
	downloader domain.VideoDownloader
	cookies    *infrastructure.CookieStore
	notifier   *infrastructure.NotificationService
	config     *domain.DownloadConfig
	logger     *zap.Logger

	// globalSem bounds downloads across all playlists; playlistSems
	// serialize downloads within one playlist so playlist order holds
	globalSem    chan struct{}
	playlistSems map[string]chan struct{}

	// running tracks cancel functions of in-flight subprocess contexts
	running map[string]context.CancelFunc
	mu      sync.Mutex
}

// NewDownloadManager creates a new download manager
func NewDownloadManager(
	downloads domain.DownloadRepository,
	playlists domain.PlaylistRepository,
	downloader domain.VideoDownloader,
	cookies *infrastructure.CookieStore,
	notifier *infrastructure.NotificationService,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadManager {
	limit := config.ConcurrentLimit
	if limit < 1 {
		limit = 1
	}
	return &DownloadManager{
		downloads:    downloads,
		playlists:    playlists,
		downloader:   downloader,
		cookies:      cookies,
		notifier:     notifier,
		config:       config,
		logger:       logger,
		globalSem:    make(chan struct{}, limit),
		playlistSems: make(map[string]chan struct{}),
		running:      make(map[string]context.CancelFunc),
	}
}

// ProcessDownload processes a single download
func (dm *DownloadManager) ProcessDownload(ctx context.Context, download *domain.Download) error {
	playlistSem := dm.playlistSemaphore(download.PlaylistID)

	// Serialize within the playlist first, then claim a global slot
	select {
	case playlistSem <- struct{}{}:
		defer func() { <-playlistSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case dm.globalSem <- struct{}{}:
		defer func() { <-dm.globalSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	// The download may have been cancelled while waiting for a slot; the
	// conditional claim keeps a concurrent cancel from being overwritten
	claimed, err := dm.downloads.ClaimForProcessing(download.ID)
	if err != nil {
		return fmt.Errorf("failed to claim download: %w", err)
	}
	if !claimed {
		return nil
	}

	current, err := dm.downloads.FindByID(download.ID)
	if err != nil {
		return fmt.Errorf("download not found: %w", err)
	}
	download = current

	playlist, err := dm.playlists.FindPlaylistByID(download.PlaylistID)
	if err != nil {
		return fmt.Errorf("playlist not found: %w", err)
	}

	dm.logger.Info("Processing download",
		zap.String("id", download.ID),
		zap.String("playlist", playlist.Title),
		zap.Int("index", download.Index),
		zap.String("url", download.URL))

	selector := playlist.Quality.FormatSelector()
	cookiePath := dm.cookies.Path(playlist.CookieName)

	// Attempt download with retries
	var lastErr error
	for attempt := 0; attempt <= dm.config.MaxRetries; attempt++ {
		if attempt > 0 {
			dm.logger.Info("Retrying download",
				zap.String("id", download.ID),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", dm.config.MaxRetries))

			select {
			case <-time.After(dm.config.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}

			download.IncrementRetry()
			dm.downloads.Update(download)
		}

		err := dm.runOne(ctx, download, playlist.OutputDir, selector, cookiePath)
		if err == nil {
			download.MarkCompleted(download.FilePath)
			if err := dm.downloads.Update(download); err != nil {
				dm.logger.Error("Failed to update download status", zap.Error(err))
			}

			dm.logger.Info("Download completed",
				zap.String("id", download.ID),
				zap.Int("index", download.Index),
				zap.String("file", download.FilePath))

			dm.finishPlaylistIfDone(playlist)
			return nil
		}

		if ctx.Err() != nil || err == context.Canceled {
			// Cancellation is not a failure; CancelDownload already
			// recorded the terminal state
			return err
		}

		lastErr = err
		dm.logger.Warn("Download attempt failed",
			zap.String("id", download.ID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	// All retries exhausted
	download.MarkFailed(lastErr)
	if err := dm.downloads.Update(download); err != nil {
		dm.logger.Error("Failed to update download status", zap.Error(err))
	}

	dm.logger.Error("Download failed after retries",
		zap.String("id", download.ID),
		zap.String("url", download.URL),
		zap.Error(lastErr))

	if dm.notifier != nil {
		dm.notifier.NotifyDownloadFailed(download.Title, download.Index)
	}
	dm.finishPlaylistIfDone(playlist)
	return lastErr
}

// runOne runs the downloader under a cancellable per-task context
func (dm *DownloadManager) runOne(ctx context.Context, download *domain.Download, outputDir, selector, cookiePath string) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	dm.mu.Lock()
	dm.running[download.ID] = cancel
	dm.mu.Unlock()

	defer func() {
		dm.mu.Lock()
		delete(dm.running, download.ID)
		dm.mu.Unlock()
	}()

	return dm.downloader.Download(taskCtx, download, outputDir, selector, cookiePath)
}

// CancelDownload cancels a download. A processing download has its
// subprocess killed through the task context.
func (dm *DownloadManager) CancelDownload(id string) error {
	download, err := dm.downloads.FindByID(id)
	if err != nil {
		return fmt.Errorf("download not found: %w", err)
	}

	if download.IsTerminal() {
		return fmt.Errorf("download already in terminal state: %s", download.Status)
	}

	dm.mu.Lock()
	if cancel, ok := dm.running[id]; ok {
		cancel()
	}
	dm.mu.Unlock()

	download.MarkCancelled()
	if err := dm.downloads.Update(download); err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	dm.logger.Info("Download cancelled", zap.String("id", id))
	return nil
}

// RetryDownload requeues a failed or cancelled download
func (dm *DownloadManager) RetryDownload(id string) error {
	download, err := dm.downloads.FindByID(id)
	if err != nil {
		return fmt.Errorf("download not found: %w", err)
	}

	if download.Status != domain.StatusFailed && download.Status != domain.StatusCancelled {
		return fmt.Errorf("download is not in a retryable state: %s", download.Status)
	}

	download.Status = domain.StatusQueued
	download.RetryCount = 0
	download.ErrorMessage = ""
	download.UpdatedAt = time.Now()

	if err := dm.downloads.Update(download); err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	dm.logger.Info("Download queued for retry", zap.String("id", id))
	return nil
}

// playlistSemaphore returns the serialization semaphore for a playlist,
// creating it on first use
func (dm *DownloadManager) playlistSemaphore(playlistID string) chan struct{} {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	sem, ok := dm.playlistSems[playlistID]
	if !ok {
		sem = make(chan struct{}, 1)
		dm.playlistSems[playlistID] = sem
	}
	return sem
}

// finishPlaylistIfDone sends the completion notification once every
// download of the playlist reached a terminal state
func (dm *DownloadManager) finishPlaylistIfDone(playlist *domain.Playlist) {
	progress, err := dm.playlists.PlaylistProgress(playlist.ID)
	if err != nil {
		dm.logger.Error("Failed to compute playlist progress", zap.Error(err))
		return
	}
	if !progress.Done() {
		return
	}

	dm.logger.Info("Playlist finished",
		zap.String("id", playlist.ID),
		zap.String("title", playlist.Title),
		zap.Int64("completed", progress.Completed),
		zap.Int64("total", progress.Total))

	if dm.notifier != nil {
		dm.notifier.NotifyPlaylistDone(playlist.Title, progress)
	}
}
