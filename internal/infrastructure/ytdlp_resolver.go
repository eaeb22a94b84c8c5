package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// YTDLPResolver enumerates playlists by invoking the yt-dlp binary
type YTDLPResolver struct {
	config *domain.YTDLPConfig
	logger *zap.Logger
}

// NewYTDLPResolver creates a new yt-dlp playlist resolver
func NewYTDLPResolver(config *domain.YTDLPConfig, logger *zap.Logger) *YTDLPResolver {
	return &YTDLPResolver{
		config: config,
		logger: logger,
	}
}

// playlistMeta is the subset of yt-dlp's --dump-single-json output we use
type playlistMeta struct {
	Title string `json:"title"`
}

// Title fetches the playlist title via yt-dlp --dump-single-json
func (r *YTDLPResolver) Title(ctx context.Context, url, cookiePath string) (string, error) {
	// --flat-playlist keeps the metadata call cheap on large playlists;
	// the playlist title is unaffected.
	args := []string{"--dump-single-json", "--flat-playlist"}
	args = append(args, authArgs(cookiePath)...)
	args = append(args, url)

	stdout, err := r.run(ctx, args)
	if err != nil {
		return "", fmt.Errorf("failed to fetch playlist metadata: %w", err)
	}

	var meta playlistMeta
	if err := json.Unmarshal(stdout, &meta); err != nil {
		return "", fmt.Errorf("failed to parse playlist metadata: %w", err)
	}
	if meta.Title == "" {
		return "playlist", nil
	}
	return meta.Title, nil
}

// Entries fetches the flat entry list via yt-dlp --flat-playlist --dump-json,
// which emits one JSON object per line in playlist order
func (r *YTDLPResolver) Entries(ctx context.Context, url, cookiePath string) ([]domain.PlaylistEntry, error) {
	args := []string{"--flat-playlist", "--dump-json"}
	args = append(args, authArgs(cookiePath)...)
	args = append(args, url)

	stdout, err := r.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist entries: %w", err)
	}

	return ParseFlatPlaylist(stdout)
}

// run executes yt-dlp with the resolver timeout, capturing stdout and
// folding the stderr tail into the returned error
func (r *YTDLPResolver) run(ctx context.Context, args []string) ([]byte, error) {
	if r.config.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.ResolveTimeout)
		defer cancel()
	}

	r.logger.Debug("Running yt-dlp",
		zap.String("cmd", ShellEscapeCommand(r.config.Binary, args...)))

	cmd := exec.CommandContext(ctx, r.config.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, stderrTail(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ParseFlatPlaylist decodes yt-dlp's line-delimited flat playlist output.
// Entries without an ID (deleted or hidden videos) are skipped.
func ParseFlatPlaylist(output []byte) ([]domain.PlaylistEntry, error) {
	var entries []domain.PlaylistEntry
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry domain.PlaylistEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("failed to parse playlist entry: %w", err)
		}
		if entry.ID == "" {
			continue
		}
		if entry.Title == "" {
			entry.Title = entry.ID
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// authArgs returns the authentication arguments for metadata calls: the
// cookie file when one is configured, otherwise the authcheck skip that
// lets public playlists resolve without a signed-in session
func authArgs(cookiePath string) []string {
	if cookiePath != "" {
		return []string{"--cookies", cookiePath}
	}
	return []string{"--extractor-args", "youtubetab:skip=authcheck"}
}

// stderrTail returns the last non-empty stderr line, which is where yt-dlp
// puts its actual error message
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output"
}
