package infrastructure

import (
	"bytes"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// probeTTL bounds how long a probe result is reused before re-checking
const probeTTL = 5 * time.Minute

// FFmpegProbe checks that the ffmpeg binary is installed and runnable.
// yt-dlp needs it to mux separate video and audio streams into mp4, so the
// service refuses playlist submissions while the probe fails.
type FFmpegProbe struct {
	binary string

	mu        sync.Mutex
	checkedAt time.Time
	available bool
	version   string
}

// NewFFmpegProbe creates a probe for the given ffmpeg binary
func NewFFmpegProbe(binary string) *FFmpegProbe {
	return &FFmpegProbe{binary: binary}
}

// Available returns true when ffmpeg responds to -version
func (p *FFmpegProbe) Available() bool {
	p.refresh()
	return p.available
}

// Version returns the probed ffmpeg version string, empty when unavailable
func (p *FFmpegProbe) Version() string {
	p.refresh()
	return p.version
}

// refresh re-runs the probe when the cached result is stale
func (p *FFmpegProbe) refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.checkedAt.IsZero() && time.Since(p.checkedAt) < probeTTL {
		return
	}

	var stdout bytes.Buffer
	cmd := exec.Command(p.binary, "-version")
	cmd.Stdout = &stdout

	err := cmd.Run()
	p.checkedAt = time.Now()
	p.available = err == nil
	p.version = ""
	if err == nil {
		p.version = ParseFFmpegVersion(stdout.String())
	}
}

// ParseFFmpegVersion extracts the version token from ffmpeg -version
// output, whose first line reads "ffmpeg version N.N ..."
func ParseFFmpegVersion(output string) string {
	line := output
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[0] == "ffmpeg" && fields[1] == "version" {
		return fields[2]
	}
	return strings.TrimSpace(line)
}
