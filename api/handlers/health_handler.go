package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/yt-playlist-go/internal/app"
	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	queueMgr *app.QueueManager
	ffmpeg   domain.ToolProbe
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(queueMgr *app.QueueManager, ffmpeg domain.ToolProbe) *HealthHandler {
	return &HealthHandler{
		queueMgr: queueMgr,
		ffmpeg:   ffmpeg,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Queue   struct {
		Running bool `json:"running"`
	} `json:"queue"`
	FFmpeg struct {
		Available bool   `json:"available"`
		Version   string `json:"version,omitempty"`
	} `json:"ffmpeg"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	response.Queue.Running = h.queueMgr.IsRunning()
	response.FFmpeg.Available = h.ffmpeg.Available()
	if response.FFmpeg.Available {
		response.FFmpeg.Version = h.ffmpeg.Version()
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.queueMgr.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "queue manager not running",
		})
		return
	}
	if !h.ffmpeg.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "ffmpeg not found in PATH",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
