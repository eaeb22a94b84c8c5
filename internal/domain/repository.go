package domain

// DownloadRepository defines the interface for download persistence
type DownloadRepository interface {
	// Create creates a new download
	Create(download *Download) error

	// CreateBatch creates a batch of downloads in one transaction
	CreateBatch(downloads []*Download) error

	// Update updates an existing download
	Update(download *Download) error

	// Delete deletes a download by ID
	Delete(id string) error

	// FindByID finds a download by ID
	FindByID(id string) (*Download, error)

	// FindByStatus finds downloads by status
	FindByStatus(status DownloadStatus) ([]*Download, error)

	// FindByPlaylist finds all downloads of a playlist in playlist order
	FindByPlaylist(playlistID string) ([]*Download, error)

	// FindPending finds all queued downloads ordered by playlist and index
	FindPending() ([]*Download, error)

	// FindAll finds all downloads with optional filters
	FindAll(filters map[string]interface{}) ([]*Download, error)

	// CountByStatus returns the number of downloads by status
	CountByStatus(status DownloadStatus) (int64, error)

	// ClaimForProcessing transitions a download from queued to processing
	// atomically, reporting whether this caller won the claim. A download
	// cancelled after being scheduled loses the claim instead of being
	// overwritten.
	ClaimForProcessing(id string) (bool, error)

	// ResetOrphanedProcessing requeues downloads left processing by a
	// previous run, returning how many were reset
	ResetOrphanedProcessing() (int64, error)

	// GetStats returns download statistics
	GetStats() (*DownloadStats, error)
}

// PlaylistRepository defines the interface for playlist persistence.
// Method names are qualified so a single store can implement both
// repository interfaces.
type PlaylistRepository interface {
	// CreatePlaylist creates a new playlist
	CreatePlaylist(playlist *Playlist) error

	// UpdatePlaylist updates an existing playlist
	UpdatePlaylist(playlist *Playlist) error

	// FindPlaylistByID finds a playlist by ID
	FindPlaylistByID(id string) (*Playlist, error)

	// FindPlaylistByURL finds the most recent playlist with the given
	// source URL, nil when none exists
	FindPlaylistByURL(url string) (*Playlist, error)

	// FindAllPlaylists lists all playlists, newest first
	FindAllPlaylists() ([]*Playlist, error)

	// PlaylistProgress returns per-status download counts for a playlist
	PlaylistProgress(playlistID string) (*PlaylistProgress, error)
}

// DownloadStats represents download statistics
type DownloadStats struct {
	Total      int64 `json:"total"`
	Queued     int64 `json:"queued"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
}

// PlaylistProgress represents the download progress of one playlist
type PlaylistProgress struct {
	PlaylistID string `json:"playlist_id"`
	Total      int64  `json:"total"`
	Completed  int64  `json:"completed"`
	Failed     int64  `json:"failed"`
	Cancelled  int64  `json:"cancelled"`
}

// Done reports whether every download reached a terminal state
func (p *PlaylistProgress) Done() bool {
	return p.Total > 0 && p.Completed+p.Failed+p.Cancelled == p.Total
}
