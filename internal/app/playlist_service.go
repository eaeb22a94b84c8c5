package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
	"github.com/yourusername/yt-playlist-go/internal/infrastructure"
	"github.com/yourusername/yt-playlist-go/pkg/logger"
)

// PlaylistService orchestrates a playlist submission: probe ffmpeg, resolve
// the playlist with yt-dlp, create the output directory, and enqueue one
// download per entry
type PlaylistService struct {
	playlists   domain.PlaylistRepository
	downloads   domain.DownloadRepository
	resolver    domain.PlaylistResolver
	ffmpeg      domain.ToolProbe
	cookies     *infrastructure.CookieStore
	notifier    *infrastructure.NotificationService
	baseDir     string
	multiLogger *logger.MultiLogger
	logger      *zap.Logger
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(
	playlists domain.PlaylistRepository,
	downloads domain.DownloadRepository,
	resolver domain.PlaylistResolver,
	ffmpeg domain.ToolProbe,
	cookies *infrastructure.CookieStore,
	notifier *infrastructure.NotificationService,
	baseDir string,
	multiLogger *logger.MultiLogger,
	log *zap.Logger,
) *PlaylistService {
	return &PlaylistService{
		playlists:   playlists,
		downloads:   downloads,
		resolver:    resolver,
		ffmpeg:      ffmpeg,
		cookies:     cookies,
		notifier:    notifier,
		baseDir:     baseDir,
		multiLogger: multiLogger,
		logger:      log,
	}
}

// Submit resolves a playlist URL and enqueues a download per video.
// Re-submitting a URL whose downloads all completed returns the existing
// playlist instead of downloading everything again.
func (s *PlaylistService) Submit(ctx context.Context, url string, quality domain.Quality, cookieName string) (*domain.Playlist, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("playlist URL is required")
	}
	if !domain.ValidateQuality(quality) {
		return nil, fmt.Errorf("invalid quality: %s", quality)
	}

	// yt-dlp cannot mux video+audio into mp4 without ffmpeg, so refuse
	// early instead of failing every download
	if !s.ffmpeg.Available() {
		return nil, fmt.Errorf("ffmpeg not found: install ffmpeg and ensure it is in PATH")
	}

	if existing, err := s.completedPlaylist(url, quality); err == nil && existing != nil {
		s.logger.Info("Playlist already downloaded",
			zap.String("id", existing.ID),
			zap.String("url", url))
		return existing, nil
	}

	cookiePath := s.cookies.Path(cookieName)
	if cookieName != "" && cookiePath == "" {
		return nil, fmt.Errorf("cookie file not found: %s", cookieName)
	}

	playlist := domain.NewPlaylist(url, quality, cookieName)
	if err := s.playlists.CreatePlaylist(playlist); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	title, err := s.resolver.Title(ctx, url, cookiePath)
	if err != nil {
		return nil, s.fail(playlist, fmt.Errorf("failed to resolve playlist: %w", err))
	}

	entries, err := s.resolver.Entries(ctx, url, cookiePath)
	if err != nil {
		return nil, s.fail(playlist, fmt.Errorf("failed to enumerate playlist: %w", err))
	}
	if len(entries) == 0 {
		return nil, s.fail(playlist, fmt.Errorf("playlist contains no downloadable videos"))
	}

	dirName := domain.SanitizeTitle(title)
	if dirName == "" {
		dirName = "playlist"
	}
	outputDir := filepath.Join(s.baseDir, dirName)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, s.fail(playlist, fmt.Errorf("failed to create output directory: %w", err))
	}

	downloads := make([]*domain.Download, 0, len(entries))
	for i, entry := range entries {
		downloads = append(downloads, domain.NewDownload(playlist.ID, entry, i+1))
	}
	if err := s.downloads.CreateBatch(downloads); err != nil {
		return nil, s.fail(playlist, fmt.Errorf("failed to enqueue downloads: %w", err))
	}

	playlist.MarkReady(title, outputDir, len(entries))
	if err := s.playlists.UpdatePlaylist(playlist); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	if s.multiLogger != nil {
		s.multiLogger.LogQueueEvent("playlist_queued",
			zap.String("id", playlist.ID),
			zap.String("url", url),
			zap.String("title", title),
			zap.String("quality", string(quality)),
			zap.Int("entries", len(entries)))
	}
	s.logger.Info("Playlist queued",
		zap.String("id", playlist.ID),
		zap.String("title", title),
		zap.Int("entries", len(entries)))

	if s.notifier != nil {
		s.notifier.NotifyPlaylistQueued(title, len(entries))
	}

	return playlist, nil
}

// GetPlaylist retrieves a playlist by ID
func (s *PlaylistService) GetPlaylist(id string) (*domain.Playlist, error) {
	return s.playlists.FindPlaylistByID(id)
}

// ListPlaylists lists all playlists, newest first
func (s *PlaylistService) ListPlaylists() ([]*domain.Playlist, error) {
	return s.playlists.FindAllPlaylists()
}

// PlaylistDownloads lists all downloads of a playlist in playlist order
func (s *PlaylistService) PlaylistDownloads(playlistID string) ([]*domain.Download, error) {
	return s.downloads.FindByPlaylist(playlistID)
}

// Progress returns per-status download counts for a playlist
func (s *PlaylistService) Progress(playlistID string) (*domain.PlaylistProgress, error) {
	return s.playlists.PlaylistProgress(playlistID)
}

// completedPlaylist returns a prior playlist for the URL when every one of
// its downloads completed and the files are still on disk
func (s *PlaylistService) completedPlaylist(url string, quality domain.Quality) (*domain.Playlist, error) {
	existing, err := s.playlists.FindPlaylistByURL(url)
	if err != nil || existing == nil {
		return nil, err
	}
	if existing.Status != domain.PlaylistReady || existing.Quality != quality {
		return nil, nil
	}

	progress, err := s.playlists.PlaylistProgress(existing.ID)
	if err != nil {
		return nil, err
	}
	if progress.Total == 0 || progress.Completed != progress.Total {
		return nil, nil
	}

	// Re-download when the output directory disappeared
	if _, err := os.Stat(existing.OutputDir); err != nil {
		return nil, nil
	}
	return existing, nil
}

// fail records a playlist failure and returns the original error
func (s *PlaylistService) fail(playlist *domain.Playlist, err error) error {
	playlist.MarkFailed(err)
	if updateErr := s.playlists.UpdatePlaylist(playlist); updateErr != nil {
		s.logger.Error("Failed to update playlist status", zap.Error(updateErr))
	}
	if s.multiLogger != nil {
		s.multiLogger.LogAppError("Playlist submission failed",
			zap.String("id", playlist.ID),
			zap.String("url", playlist.URL),
			zap.Error(err))
	}
	return err
}
