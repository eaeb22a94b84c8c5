package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/infrastructure"
)

// CookieHandler handles cookie file uploads for age-restricted and
// private playlists
type CookieHandler struct {
	store  *infrastructure.CookieStore
	logger *zap.Logger
}

// NewCookieHandler creates a new cookie handler
func NewCookieHandler(store *infrastructure.CookieStore, logger *zap.Logger) *CookieHandler {
	return &CookieHandler{
		store:  store,
		logger: logger,
	}
}

// UploadCookie handles POST /api/v1/cookies. The request is a multipart
// form with a single "file" field holding a Netscape cookies.txt export.
func (h *CookieHandler) UploadCookie(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing cookie file upload"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	if _, err := h.store.Save(name, file); err != nil {
		h.logger.Error("Failed to save cookie file",
			zap.String("name", name),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"name": name})
}

// ListCookies handles GET /api/v1/cookies
func (h *CookieHandler) ListCookies(c *gin.Context) {
	names, err := h.store.List()
	if err != nil {
		h.logger.Error("Failed to list cookie files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, names)
}

// DeleteCookie handles DELETE /api/v1/cookies/:name
func (h *CookieHandler) DeleteCookie(c *gin.Context) {
	name := c.Param("name")

	if err := h.store.Remove(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cookie file removed"})
}
