package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// outputTemplate names downloaded files "<index> - <title>.<ext>" inside
// the playlist directory. The index is embedded literally: downloads run
// against bare watch URLs, where yt-dlp has no playlist context and would
// render %(playlist_index)s as "NA".
func outputTemplate(index int) string {
	return fmt.Sprintf("%d - %%(title)s.%%(ext)s", index)
}

// YTDLPDownloader downloads single videos by invoking the yt-dlp binary
type YTDLPDownloader struct {
	config  *domain.YTDLPConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPDownloader creates a new yt-dlp video downloader
func NewYTDLPDownloader(config *domain.YTDLPConfig, logsDir string, logger *zap.Logger) *YTDLPDownloader {
	return &YTDLPDownloader{
		config:  config,
		logsDir: logsDir,
		logger:  logger,
	}
}

// BuildArgs constructs the yt-dlp argument list for one video download
func BuildArgs(download *domain.Download, outputDir, selector, cookiePath string) []string {
	args := []string{
		"--no-warnings",
		"--quiet",
		"--no-progress",
		"-f", selector,
		"--merge-output-format", "mp4",
		"-o", filepath.Join(outputDir, outputTemplate(download.Index)),
	}
	if cookiePath != "" {
		args = append(args, "--cookies", cookiePath)
	}
	return append(args, download.URL)
}

// Download runs yt-dlp for one download task. All tool output is appended
// to a dated download log; the exit code decides success. The context
// kills the subprocess on cancellation.
func (d *YTDLPDownloader) Download(ctx context.Context, download *domain.Download, outputDir, selector, cookiePath string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := BuildArgs(download, outputDir, selector, cookiePath)

	downloadLog, err := d.openLogFile()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer downloadLog.Close()

	cmdLine := ShellEscapeCommand(d.config.Binary, args...)
	d.writeLogHeader(downloadLog, download, cmdLine)

	// Stderr is teed into a buffer so failures carry the tool's message
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.config.Binary, args...)
	cmd.Stdout = downloadLog
	cmd.Stderr = newTeeWriter(downloadLog, &stderr)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			d.writeLogFooter(downloadLog, false, "cancelled")
			return ctx.Err()
		}
		d.writeLogFooter(downloadLog, false, fmt.Sprintf("yt-dlp failed: %v", err))
		return fmt.Errorf("yt-dlp failed: %w: %s", err, stderrTail(stderr.String()))
	}

	// Exit code 0 means yt-dlp succeeded; locating the file only fills in
	// the path for display
	filePath, err := d.findDownloadedFile(outputDir, download.Index)
	if err != nil {
		d.logger.Warn("Downloaded file not located",
			zap.String("id", download.ID),
			zap.Int("index", download.Index),
			zap.Error(err))
		d.writeLogFooter(downloadLog, true, fmt.Sprintf("downloaded, file not located: %v", err))
		return nil
	}

	download.FilePath = filePath
	d.writeLogFooter(downloadLog, true, fmt.Sprintf("Downloaded: %s", filePath))
	return nil
}

// openLogFile opens the download log file for today
func (d *YTDLPDownloader) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(d.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	dateStr := time.Now().Format("20060102")
	logPath := filepath.Join(d.logsDir, "download-"+dateStr+".log")
	return os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// writeLogHeader writes the download start marker
func (d *YTDLPDownloader) writeLogHeader(file *os.File, download *domain.Download, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	file.WriteString(fmt.Sprintf("\n=== [%s] Download %s (video %d: %s) ===\n",
		timestamp, download.ID, download.Index, download.VideoID))
	file.WriteString(fmt.Sprintf("$ %s\n", cmdLine))
}

// writeLogFooter writes the download end marker
func (d *YTDLPDownloader) writeLogFooter(file *os.File, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	file.WriteString(fmt.Sprintf("[%s] %s: %s\n", timestamp, status, message))
	file.WriteString("=== END ===\n\n")
}

// findDownloadedFile locates the media file yt-dlp produced for the given
// playlist index. The output template guarantees the "<index> - " prefix.
func (d *YTDLPDownloader) findDownloadedFile(outputDir string, index int) (string, error) {
	prefix := fmt.Sprintf("%d - ", index)
	var newest string
	var newestMod time.Time

	dirEntries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !isMediaFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(outputDir, name)
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no file downloaded for index %d", index)
	}
	return newest, nil
}

// isMediaFile checks if a file is a downloaded media file
func isMediaFile(name string) bool {
	switch filepath.Ext(name) {
	case ".mp4", ".mkv", ".webm", ".m4v", ".mov", ".avi":
		return true
	default:
		return false
	}
}

// teeWriter duplicates writes to two destinations; write errors on the
// secondary buffer are impossible and ignored
type teeWriter struct {
	primary   *os.File
	secondary *bytes.Buffer
}

func newTeeWriter(primary *os.File, secondary *bytes.Buffer) *teeWriter {
	return &teeWriter{primary: primary, secondary: secondary}
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.secondary.Write(p)
	return w.primary.Write(p)
}
