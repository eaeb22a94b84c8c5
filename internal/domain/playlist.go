package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaylistStatus represents the current status of a playlist submission
type PlaylistStatus string

const (
	PlaylistResolving PlaylistStatus = "resolving"
	PlaylistReady     PlaylistStatus = "ready"
	PlaylistFailed    PlaylistStatus = "failed"
)

// Quality represents the video quality tier selected by the user
type Quality string

const (
	QualityHigh Quality = "high"
	Quality720p Quality = "720p"
	Quality360p Quality = "360p"
)

// formatSelectors maps each quality tier to the yt-dlp format selector
// expression passed via -f. The expressions are fixed; unknown tiers are
// rejected before they reach the downloader.
var formatSelectors = map[Quality]string{
	QualityHigh: "bestvideo+bestaudio/best",
	Quality720p: "bestvideo[height<=720]+bestaudio[ext=m4a]/bestvideo[height<=720]+bestaudio/best[height<=720]",
	Quality360p: "bestvideo[height<=360]+bestaudio[ext=m4a]/bestvideo[height<=360]+bestaudio/best[height<=360]",
}

// FormatSelector returns the yt-dlp format selector for the quality tier
func (q Quality) FormatSelector() string {
	return formatSelectors[q]
}

// ValidateQuality checks if a quality tier is one of the supported values
func ValidateQuality(q Quality) bool {
	_, ok := formatSelectors[q]
	return ok
}

// Playlist represents a submitted playlist and the directory its videos
// are downloaded into
type Playlist struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	URL        string         `json:"url" gorm:"not null;index"`
	Title      string         `json:"title"`
	OutputDir  string         `json:"output_dir"`
	Quality    Quality        `json:"quality" gorm:"not null"`
	CookieName string         `json:"cookie_name,omitempty"`
	Status     PlaylistStatus `json:"status" gorm:"not null;index"`
	EntryCount int            `json:"entry_count"`
	ErrorMsg   string         `json:"error_message,omitempty"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewPlaylist creates a new playlist submission
func NewPlaylist(url string, quality Quality, cookieName string) *Playlist {
	return &Playlist{
		ID:         uuid.New().String(),
		URL:        url,
		Quality:    quality,
		CookieName: cookieName,
		Status:     PlaylistResolving,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// MarkReady marks the playlist as resolved and ready for downloading
func (p *Playlist) MarkReady(title, outputDir string, entryCount int) {
	p.Title = title
	p.OutputDir = outputDir
	p.EntryCount = entryCount
	p.Status = PlaylistReady
	p.UpdatedAt = time.Now()
}

// MarkFailed marks the playlist resolution as failed
func (p *Playlist) MarkFailed(err error) {
	p.Status = PlaylistFailed
	p.ErrorMsg = err.Error()
	p.UpdatedAt = time.Now()
}

// PlaylistEntry is a single video as reported by yt-dlp's flat playlist
// output, one JSON object per line
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// WatchURL builds the canonical watch URL for a playlist entry
func (e PlaylistEntry) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + e.ID
}

// invalidTitleChars matches characters that are reserved on at least one
// supported filesystem
var invalidTitleChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeTitle makes a playlist title safe to use as a directory name.
// Reserved characters become underscores; surrounding spaces and trailing
// dots are trimmed so the result is valid on Windows as well.
func SanitizeTitle(name string) string {
	sanitized := invalidTitleChars.ReplaceAllString(name, "_")
	sanitized = strings.TrimSpace(sanitized)
	return strings.TrimRight(sanitized, ". ")
}
