package api

import (
	"io"
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/yt-playlist-go/api/handlers"
	"github.com/yourusername/yt-playlist-go/api/middleware"
	"github.com/yourusername/yt-playlist-go/internal/app"
	"github.com/yourusername/yt-playlist-go/internal/domain"
	"github.com/yourusername/yt-playlist-go/internal/infrastructure"
	"github.com/yourusername/yt-playlist-go/pkg/logger"
	"github.com/yourusername/yt-playlist-go/web"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	playlistSvc *app.PlaylistService,
	queueMgr *app.QueueManager,
	downloadMgr *app.DownloadManager,
	cookieStore *infrastructure.CookieStore,
	ffmpeg domain.ToolProbe,
	logAdapter *logger.LoggerAdapter,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.LoggerWithAdapter(logAdapter))
	router.Use(middleware.RecoveryWithAdapter(logAdapter))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(queueMgr, ffmpeg)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		playlistHandler := handlers.NewPlaylistHandler(playlistSvc, logAdapter.GetSingleLogger())
		playlists := v1.Group("/playlists")
		{
			playlists.POST("", playlistHandler.SubmitPlaylist)
			playlists.GET("", playlistHandler.ListPlaylists)
			playlists.GET("/:id", playlistHandler.GetPlaylist)
			playlists.GET("/:id/downloads", playlistHandler.GetPlaylistDownloads)
			playlists.GET("/:id/progress", playlistHandler.GetPlaylistProgress)
		}

		downloadHandler := handlers.NewDownloadHandler(queueMgr, downloadMgr, logAdapter.GetSingleLogger())
		downloads := v1.Group("/downloads")
		{
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.POST("/:id/cancel", downloadHandler.CancelDownload)
			downloads.POST("/:id/retry", downloadHandler.RetryDownload)
			downloads.DELETE("/:id", downloadHandler.DeleteDownload)
		}

		cookieHandler := handlers.NewCookieHandler(cookieStore, logAdapter.GetSingleLogger())
		cookies := v1.Group("/cookies")
		{
			cookies.POST("", cookieHandler.UploadCookie)
			cookies.GET("", cookieHandler.ListCookies)
			cookies.DELETE("/:name", cookieHandler.DeleteCookie)
		}
	}

	// Serve embedded web UI
	webFS := web.GetWebFS()

	router.GET("/", func(c *gin.Context) {
		serveIndexHTML(c, webFS)
	})

	router.GET("/static/*filepath", func(c *gin.Context) {
		filePath := strings.TrimPrefix(c.Request.URL.Path, "/")
		serveFile(c, webFS, filePath)
	})

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path

		// Don't serve the UI for API routes
		if strings.HasPrefix(path, "/api/") {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}

		filePath := strings.TrimPrefix(path, "/")
		if filePath == "" {
			serveIndexHTML(c, webFS)
			return
		}

		if _, err := fs.Stat(webFS, filePath); err == nil {
			serveFile(c, webFS, filePath)
			return
		}

		// Fallback to index.html for client-side routing
		serveIndexHTML(c, webFS)
	})

	return router
}

// serveIndexHTML serves the index.html file from the embedded filesystem
func serveIndexHTML(c *gin.Context, webFS fs.FS) {
	serveFile(c, webFS, "index.html")
}

// serveFile serves a file from the embedded filesystem with proper content type
func serveFile(c *gin.Context, webFS fs.FS, filePath string) {
	file, err := webFS.Open(filePath)
	if err != nil {
		c.String(404, "File not found: %v", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.String(500, "Failed to read file: %v", err)
		return
	}

	contentType := "application/octet-stream"
	if strings.HasSuffix(filePath, ".html") {
		contentType = "text/html; charset=utf-8"
	} else if strings.HasSuffix(filePath, ".css") {
		contentType = "text/css; charset=utf-8"
	} else if strings.HasSuffix(filePath, ".js") {
		contentType = "application/javascript; charset=utf-8"
	} else if strings.HasSuffix(filePath, ".json") {
		contentType = "application/json; charset=utf-8"
	} else if strings.HasSuffix(filePath, ".png") {
		contentType = "image/png"
	} else if strings.HasSuffix(filePath, ".svg") {
		contentType = "image/svg+xml"
	} else if strings.HasSuffix(filePath, ".txt") {
		contentType = "text/plain; charset=utf-8"
	}

	c.Data(200, contentType, content)
}
