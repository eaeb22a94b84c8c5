package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEntry() PlaylistEntry {
	return PlaylistEntry{ID: "abc123", Title: "Episode 1"}
}

func TestNewDownload(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)

	assert.NotEmpty(t, download.ID)
	assert.Equal(t, "pl-1", download.PlaylistID)
	assert.Equal(t, "abc123", download.VideoID)
	assert.Equal(t, "Episode 1", download.Title)
	assert.Equal(t, 1, download.Index)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", download.URL)
	assert.Equal(t, StatusQueued, download.Status)
	assert.Equal(t, 0, download.RetryCount)
}

func TestDownload_MarkProcessing(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)

	download.MarkProcessing()

	assert.Equal(t, StatusProcessing, download.Status)
	assert.NotNil(t, download.StartedAt)
}

func TestDownload_MarkCompleted(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)
	filePath := "/downloads/Go Tutorials/1 - Episode 1.mp4"

	download.MarkCompleted(filePath)

	assert.Equal(t, StatusCompleted, download.Status)
	assert.Equal(t, filePath, download.FilePath)
	assert.NotNil(t, download.CompletedAt)
}

func TestDownload_MarkFailed(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)
	err := errors.New("download failed")

	download.MarkFailed(err)

	assert.Equal(t, StatusFailed, download.Status)
	assert.Equal(t, "download failed", download.ErrorMessage)
}

func TestDownload_MarkCancelled(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)

	download.MarkCancelled()

	assert.Equal(t, StatusCancelled, download.Status)
	assert.True(t, download.IsTerminal())
}

func TestDownload_IncrementRetry(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)

	download.IncrementRetry()
	assert.Equal(t, 1, download.RetryCount)

	download.IncrementRetry()
	assert.Equal(t, 2, download.RetryCount)
}

func TestDownload_CanRetry(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)
	download.Status = StatusFailed

	assert.True(t, download.CanRetry(3))

	download.RetryCount = 3
	assert.False(t, download.CanRetry(3))

	download.RetryCount = 0
	download.Status = StatusCompleted
	assert.False(t, download.CanRetry(3))
}

func TestDownload_StateChecks(t *testing.T) {
	download := NewDownload("pl-1", testEntry(), 1)
	assert.True(t, download.IsPending())
	assert.False(t, download.IsTerminal())

	download.MarkProcessing()
	assert.True(t, download.IsProcessing())

	download.MarkCompleted("/tmp/file.mp4")
	assert.True(t, download.IsTerminal())
}
