package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple path",
			input:    "/tmp/simple/path",
			expected: "/tmp/simple/path",
		},
		{
			name:     "path with spaces",
			input:    "/downloads/Go Tutorials",
			expected: "'/downloads/Go Tutorials'",
		},
		{
			name:     "path with single quote",
			input:    "/downloads/it's here",
			expected: `'/downloads/it'"'"'s here'`,
		},
		{
			name:     "format selector",
			input:    "bestvideo[height<=720]+bestaudio[ext=m4a]/best[height<=720]",
			expected: "'bestvideo[height<=720]+bestaudio[ext=m4a]/best[height<=720]'",
		},
		{
			name:     "output template",
			input:    "1 - %(title)s.%(ext)s",
			expected: "'1 - %(title)s.%(ext)s'",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	cmd := ShellEscapeCommand("yt-dlp", "-f", "bestvideo+bestaudio/best", "https://www.youtube.com/watch?v=abc")
	assert.Equal(t, "yt-dlp -f bestvideo+bestaudio/best 'https://www.youtube.com/watch?v=abc'", cmd)
}
