package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/app"
	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// PlaylistHandler handles playlist-related HTTP requests
type PlaylistHandler struct {
	service *app.PlaylistService
	logger  *zap.Logger
}

// NewPlaylistHandler creates a new playlist handler
func NewPlaylistHandler(service *app.PlaylistService, logger *zap.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		service: service,
		logger:  logger,
	}
}

// SubmitPlaylistRequest represents a request to queue a playlist
type SubmitPlaylistRequest struct {
	URL     string `json:"url" binding:"required"`
	Quality string `json:"quality,omitempty"`
	Cookie  string `json:"cookie,omitempty"`
}

// SubmitPlaylist handles POST /api/v1/playlists
func (h *PlaylistHandler) SubmitPlaylist(c *gin.Context) {
	var req SubmitPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quality := domain.Quality(req.Quality)
	if quality == "" {
		quality = domain.QualityHigh
	}
	if !domain.ValidateQuality(quality) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported quality: " + req.Quality})
		return
	}

	playlist, err := h.service.Submit(c.Request.Context(), req.URL, quality, req.Cookie)
	if err != nil {
		h.logger.Error("Failed to queue playlist",
			zap.String("url", req.URL),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, playlist)
}

// GetPlaylist handles GET /api/v1/playlists/:id
func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	id := c.Param("id")

	playlist, err := h.service.GetPlaylist(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// ListPlaylists handles GET /api/v1/playlists
func (h *PlaylistHandler) ListPlaylists(c *gin.Context) {
	playlists, err := h.service.ListPlaylists()
	if err != nil {
		h.logger.Error("Failed to list playlists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, playlists)
}

// GetPlaylistDownloads handles GET /api/v1/playlists/:id/downloads
func (h *PlaylistHandler) GetPlaylistDownloads(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.service.GetPlaylist(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	downloads, err := h.service.PlaylistDownloads(id)
	if err != nil {
		h.logger.Error("Failed to list playlist downloads",
			zap.String("playlist_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, downloads)
}

// GetPlaylistProgress handles GET /api/v1/playlists/:id/progress
func (h *PlaylistHandler) GetPlaylistProgress(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.service.GetPlaylist(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist not found"})
		return
	}

	progress, err := h.service.Progress(id)
	if err != nil {
		h.logger.Error("Failed to compute playlist progress",
			zap.String("playlist_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, progress)
}
