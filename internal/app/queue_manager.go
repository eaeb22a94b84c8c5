package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
	"github.com/yourusername/yt-playlist-go/pkg/logger"
)

// QueueManager manages the download queue
type QueueManager struct {
	repo        domain.DownloadRepository
	downloadMgr *DownloadManager
	config      *domain.QueueConfig
	multiLogger *logger.MultiLogger
	mu          sync.RWMutex
	running     bool
	stopChan    chan struct{}
	exitChan    chan struct{}
	exitOnce    sync.Once
	workerWg    sync.WaitGroup

	// inFlight guards against dispatching the same download twice while
	// a worker still holds it in a semaphore queue
	inFlight   map[string]struct{}
	inFlightMu sync.Mutex
}

// NewQueueManager creates a new queue manager
func NewQueueManager(
	repo domain.DownloadRepository,
	downloadMgr *DownloadManager,
	config *domain.QueueConfig,
	multiLogger *logger.MultiLogger,
) *QueueManager {
	return &QueueManager{
		repo:        repo,
		downloadMgr: downloadMgr,
		config:      config,
		multiLogger: multiLogger,
		stopChan:    make(chan struct{}),
		exitChan:    make(chan struct{}),
		inFlight:    make(map[string]struct{}),
	}
}

// Start starts the queue processor
func (qm *QueueManager) Start(ctx context.Context) error {
	qm.mu.Lock()
	if qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager already running")
	}
	qm.running = true
	qm.mu.Unlock()

	// Downloads stuck in processing from a crashed run go back to queued
	if n, err := qm.repo.ResetOrphanedProcessing(); err == nil && n > 0 {
		if qm.multiLogger != nil {
			qm.multiLogger.LogQueueEvent("orphans_requeued", zap.Int64("count", n))
		}
	}

	if qm.multiLogger != nil {
		qm.multiLogger.LogQueueEvent("queue_started")
	}

	qm.workerWg.Add(1)
	go qm.processQueue(ctx)

	return nil
}

// Stop stops the queue processor
func (qm *QueueManager) Stop() error {
	qm.mu.Lock()
	if !qm.running {
		qm.mu.Unlock()
		return fmt.Errorf("queue manager not running")
	}
	qm.running = false
	qm.mu.Unlock()

	if qm.multiLogger != nil {
		qm.multiLogger.LogQueueEvent("queue_stopped")
	}
	close(qm.stopChan)
	qm.workerWg.Wait()

	return nil
}

// IsRunning returns whether the queue manager is running
func (qm *QueueManager) IsRunning() bool {
	qm.mu.RLock()
	defer qm.mu.RUnlock()
	return qm.running
}

// WaitForExit returns a channel closed when the processor auto-exits
// because the queue stayed empty
func (qm *QueueManager) WaitForExit() <-chan struct{} {
	return qm.exitChan
}

// ListDownloads lists all downloads with optional filters
func (qm *QueueManager) ListDownloads(filters map[string]interface{}) ([]*domain.Download, error) {
	return qm.repo.FindAll(filters)
}

// GetDownload retrieves a download by ID
func (qm *QueueManager) GetDownload(id string) (*domain.Download, error) {
	return qm.repo.FindByID(id)
}

// DeleteDownload removes a download record. Processing downloads must be
// cancelled first.
func (qm *QueueManager) DeleteDownload(id string) error {
	download, err := qm.repo.FindByID(id)
	if err != nil {
		return fmt.Errorf("download not found: %w", err)
	}
	if download.IsProcessing() {
		return fmt.Errorf("cannot delete a processing download, cancel it first")
	}
	return qm.repo.Delete(id)
}

// GetStats returns queue statistics
func (qm *QueueManager) GetStats() (*domain.DownloadStats, error) {
	return qm.repo.GetStats()
}

// processQueue processes the download queue
func (qm *QueueManager) processQueue(ctx context.Context) {
	defer qm.workerWg.Done()

	ticker := time.NewTicker(qm.config.CheckInterval)
	defer ticker.Stop()

	emptyStartTime := time.Time{}

	for {
		select {
		case <-ctx.Done():
			if qm.multiLogger != nil {
				qm.multiLogger.LogQueueEvent("queue_processor_stopped",
					zap.String("reason", "context_cancelled"))
			}
			return
		case <-qm.stopChan:
			if qm.multiLogger != nil {
				qm.multiLogger.LogQueueEvent("queue_processor_stopped",
					zap.String("reason", "stop_signal"))
			}
			return
		case <-ticker.C:
			pending, err := qm.repo.FindPending()
			if err != nil {
				if qm.multiLogger != nil {
					qm.multiLogger.LogAppError("Failed to fetch pending downloads", zap.Error(err))
				}
				continue
			}

			pending = qm.filterInFlight(pending)

			if len(pending) == 0 && !qm.hasInFlight() {
				if emptyStartTime.IsZero() {
					emptyStartTime = time.Now()
					if qm.multiLogger != nil {
						qm.multiLogger.LogQueueEvent("queue_empty")
					}
				} else if qm.config.AutoExitOnEmpty && time.Since(emptyStartTime) > qm.config.EmptyWaitTime {
					if qm.multiLogger != nil {
						qm.multiLogger.LogQueueEvent("queue_auto_exit",
							zap.String("reason", "empty_timeout"))
					}
					qm.exitOnce.Do(func() { close(qm.exitChan) })
					return
				}
				continue
			}

			emptyStartTime = time.Time{}

			// One worker per playlist processes that playlist's batch
			// sequentially in index order; the download manager's
			// semaphores bound concurrency across playlists
			for _, batch := range groupByPlaylist(pending) {
				qm.workerWg.Add(1)
				go func(batch []*domain.Download) {
					defer qm.workerWg.Done()
					for _, download := range batch {
						qm.processOne(ctx, download)
					}
				}(batch)
			}
		}
	}
}

// processOne runs a single download through the download manager
func (qm *QueueManager) processOne(ctx context.Context, download *domain.Download) {
	defer qm.clearInFlight(download.ID)

	if qm.multiLogger != nil {
		qm.multiLogger.LogQueueEvent("download_started",
			zap.String("id", download.ID),
			zap.String("playlist_id", download.PlaylistID),
			zap.Int("index", download.Index))
	}

	if err := qm.downloadMgr.ProcessDownload(ctx, download); err != nil {
		if qm.multiLogger != nil {
			qm.multiLogger.LogQueueEvent("download_failed",
				zap.String("id", download.ID),
				zap.Error(err))
			qm.multiLogger.LogAppError("Failed to process download",
				zap.String("id", download.ID),
				zap.Error(err))
		}
		return
	}

	if qm.multiLogger != nil {
		qm.multiLogger.LogQueueEvent("download_completed",
			zap.String("id", download.ID),
			zap.String("status", string(download.Status)),
			zap.String("file_path", download.FilePath))
	}
}

// groupByPlaylist splits pending downloads into per-playlist batches,
// keeping the index order FindPending returns
func groupByPlaylist(pending []*domain.Download) [][]*domain.Download {
	var batches [][]*domain.Download
	byPlaylist := make(map[string]int)

	for _, dl := range pending {
		i, ok := byPlaylist[dl.PlaylistID]
		if !ok {
			byPlaylist[dl.PlaylistID] = len(batches)
			batches = append(batches, []*domain.Download{dl})
			continue
		}
		batches[i] = append(batches[i], dl)
	}
	return batches
}

// filterInFlight drops downloads a worker already holds and marks the
// rest as held
func (qm *QueueManager) filterInFlight(pending []*domain.Download) []*domain.Download {
	qm.inFlightMu.Lock()
	defer qm.inFlightMu.Unlock()

	filtered := pending[:0]
	for _, dl := range pending {
		if _, held := qm.inFlight[dl.ID]; held {
			continue
		}
		qm.inFlight[dl.ID] = struct{}{}
		filtered = append(filtered, dl)
	}
	return filtered
}

// hasInFlight reports whether any worker still holds a download
func (qm *QueueManager) hasInFlight() bool {
	qm.inFlightMu.Lock()
	defer qm.inFlightMu.Unlock()
	return len(qm.inFlight) > 0
}

// clearInFlight releases a download held by a finished worker
func (qm *QueueManager) clearInFlight(id string) {
	qm.inFlightMu.Lock()
	defer qm.inFlightMu.Unlock()
	delete(qm.inFlight, id)
}
