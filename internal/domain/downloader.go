package domain

import "context"

// PlaylistResolver enumerates a playlist with the external extraction tool
type PlaylistResolver interface {
	// Title fetches the playlist title
	Title(ctx context.Context, url, cookiePath string) (string, error)

	// Entries fetches the flat list of videos in playlist order
	Entries(ctx context.Context, url, cookiePath string) ([]PlaylistEntry, error)
}

// VideoDownloader downloads a single video into the playlist directory
type VideoDownloader interface {
	// Download runs the external tool for one download task. outputDir is
	// the playlist directory, selector the yt-dlp format expression.
	Download(ctx context.Context, download *Download, outputDir, selector, cookiePath string) error
}

// ToolProbe reports whether an external tool is usable
type ToolProbe interface {
	// Available returns true when the tool can be invoked
	Available() bool

	// Version returns the tool's version string, empty when unavailable
	Version() string
}
