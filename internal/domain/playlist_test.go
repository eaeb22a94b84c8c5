package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain title",
			input:    "Go Tutorials",
			expected: "Go Tutorials",
		},
		{
			name:     "all reserved characters",
			input:    `a<b>c:d"e/f\g|h?i*j`,
			expected: "a_b_c_d_e_f_g_h_i_j",
		},
		{
			name:     "surrounding spaces",
			input:    "  spaced out  ",
			expected: "spaced out",
		},
		{
			name:     "trailing dots",
			input:    "Vol. 1...",
			expected: "Vol. 1",
		},
		{
			name:     "trailing dots and spaces mixed",
			input:    "ending . . ",
			expected: "ending",
		},
		{
			name:     "path traversal style input",
			input:    "../../etc",
			expected: ".._.._etc",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTitle(tt.input))
		})
	}
}

func TestQuality_FormatSelector(t *testing.T) {
	assert.Equal(t, "bestvideo+bestaudio/best", QualityHigh.FormatSelector())
	assert.Equal(t,
		"bestvideo[height<=720]+bestaudio[ext=m4a]/bestvideo[height<=720]+bestaudio/best[height<=720]",
		Quality720p.FormatSelector())
	assert.Equal(t,
		"bestvideo[height<=360]+bestaudio[ext=m4a]/bestvideo[height<=360]+bestaudio/best[height<=360]",
		Quality360p.FormatSelector())
}

func TestValidateQuality(t *testing.T) {
	assert.True(t, ValidateQuality(QualityHigh))
	assert.True(t, ValidateQuality(Quality720p))
	assert.True(t, ValidateQuality(Quality360p))
	assert.False(t, ValidateQuality("4k"))
	assert.False(t, ValidateQuality(""))
}

func TestPlaylistEntry_WatchURL(t *testing.T) {
	entry := PlaylistEntry{ID: "dQw4w9WgXcQ", Title: "some video"}
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", entry.WatchURL())
}

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL123", Quality720p, "youtube.txt")

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "https://www.youtube.com/playlist?list=PL123", p.URL)
	assert.Equal(t, Quality720p, p.Quality)
	assert.Equal(t, "youtube.txt", p.CookieName)
	assert.Equal(t, PlaylistResolving, p.Status)
}

func TestPlaylist_MarkReady(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL123", QualityHigh, "")

	p.MarkReady("Go Tutorials", "/tmp/Go Tutorials", 12)

	assert.Equal(t, PlaylistReady, p.Status)
	assert.Equal(t, "Go Tutorials", p.Title)
	assert.Equal(t, "/tmp/Go Tutorials", p.OutputDir)
	assert.Equal(t, 12, p.EntryCount)
}

func TestPlaylist_MarkFailed(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL123", QualityHigh, "")

	p.MarkFailed(errors.New("metadata fetch failed"))

	assert.Equal(t, PlaylistFailed, p.Status)
	assert.Equal(t, "metadata fetch failed", p.ErrorMsg)
}
