package infrastructure

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// SQLiteRepository implements DownloadRepository and PlaylistRepository
// using SQLite
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Download{}, &domain.Playlist{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Create creates a new download
func (r *SQLiteRepository) Create(download *domain.Download) error {
	return r.db.Create(download).Error
}

// CreateBatch creates a batch of downloads in one transaction
func (r *SQLiteRepository) CreateBatch(downloads []*domain.Download) error {
	if len(downloads) == 0 {
		return nil
	}
	return r.db.Create(&downloads).Error
}

// Update updates an existing download
func (r *SQLiteRepository) Update(download *domain.Download) error {
	return r.db.Save(download).Error
}

// Delete deletes a download by ID
func (r *SQLiteRepository) Delete(id string) error {
	return r.db.Delete(&domain.Download{}, "id = ?", id).Error
}

// FindByID finds a download by ID
func (r *SQLiteRepository) FindByID(id string) (*domain.Download, error) {
	var download domain.Download
	err := r.db.First(&download, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &download, nil
}

// FindByStatus finds downloads by status
func (r *SQLiteRepository) FindByStatus(status domain.DownloadStatus) ([]*domain.Download, error) {
	var downloads []*domain.Download
	err := r.db.Where("status = ?", status).Find(&downloads).Error
	return downloads, err
}

// FindByPlaylist finds all downloads of a playlist in playlist order
func (r *SQLiteRepository) FindByPlaylist(playlistID string) ([]*domain.Download, error) {
	var downloads []*domain.Download
	err := r.db.Where("playlist_id = ?", playlistID).
		Order("idx ASC").
		Find(&downloads).Error
	return downloads, err
}

// FindPending finds all queued downloads ordered by playlist and index
func (r *SQLiteRepository) FindPending() ([]*domain.Download, error) {
	var downloads []*domain.Download
	err := r.db.Where("status = ?", domain.StatusQueued).
		Order("playlist_id ASC, idx ASC").
		Find(&downloads).Error
	return downloads, err
}

// FindAll finds all downloads with optional filters
func (r *SQLiteRepository) FindAll(filters map[string]interface{}) ([]*domain.Download, error) {
	var downloads []*domain.Download
	query := r.db

	for key, value := range filters {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&downloads).Error
	return downloads, err
}

// CountByStatus returns the number of downloads by status
func (r *SQLiteRepository) CountByStatus(status domain.DownloadStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Download{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// ClaimForProcessing transitions a download from queued to processing with
// a conditional update, so a concurrent cancel cannot be overwritten
func (r *SQLiteRepository) ClaimForProcessing(id string) (bool, error) {
	now := time.Now()
	result := r.db.Model(&domain.Download{}).
		Where("id = ? AND status = ?", id, domain.StatusQueued).
		Updates(map[string]interface{}{
			"status":     domain.StatusProcessing,
			"started_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ResetOrphanedProcessing requeues downloads left in processing state by a
// previous run
func (r *SQLiteRepository) ResetOrphanedProcessing() (int64, error) {
	result := r.db.Model(&domain.Download{}).
		Where("status = ?", domain.StatusProcessing).
		Update("status", domain.StatusQueued)
	return result.RowsAffected, result.Error
}

// GetStats returns download statistics
func (r *SQLiteRepository) GetStats() (*domain.DownloadStats, error) {
	stats := &domain.DownloadStats{}

	if err := r.db.Model(&domain.Download{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.DownloadStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Download{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusQueued:
			stats.Queued = sc.Count
		case domain.StatusProcessing:
			stats.Processing = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		case domain.StatusCancelled:
			stats.Cancelled = sc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// PlaylistRepository implementation
// ============================================================================

// CreatePlaylist creates a new playlist record
func (r *SQLiteRepository) CreatePlaylist(playlist *domain.Playlist) error {
	return r.db.Create(playlist).Error
}

// UpdatePlaylist updates an existing playlist record
func (r *SQLiteRepository) UpdatePlaylist(playlist *domain.Playlist) error {
	return r.db.Save(playlist).Error
}

// FindPlaylistByID finds a playlist by ID
func (r *SQLiteRepository) FindPlaylistByID(id string) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.db.First(&playlist, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// FindPlaylistByURL finds the most recent playlist with the given URL.
// Returns nil when none exists.
func (r *SQLiteRepository) FindPlaylistByURL(url string) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.db.Where("url = ?", url).Order("created_at DESC").First(&playlist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// FindAllPlaylists lists all playlists, newest first
func (r *SQLiteRepository) FindAllPlaylists() ([]*domain.Playlist, error) {
	var playlists []*domain.Playlist
	err := r.db.Order("created_at DESC").Find(&playlists).Error
	return playlists, err
}

// PlaylistProgress returns per-status download counts for a playlist
func (r *SQLiteRepository) PlaylistProgress(playlistID string) (*domain.PlaylistProgress, error) {
	progress := &domain.PlaylistProgress{PlaylistID: playlistID}

	if err := r.db.Model(&domain.Download{}).
		Where("playlist_id = ?", playlistID).
		Count(&progress.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.DownloadStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Download{}).
		Where("playlist_id = ?", playlistID).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusCompleted:
			progress.Completed = sc.Count
		case domain.StatusFailed:
			progress.Failed = sc.Count
		case domain.StatusCancelled:
			progress.Cancelled = sc.Count
		}
	}

	return progress, nil
}
