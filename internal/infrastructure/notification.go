package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// NotificationService handles sending desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	switch n.config.Method {
	case "osascript":
		return n.sendOSAScript(title, message)
	case "notify-send":
		return n.sendNotifySend(title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}

// sendOSAScript sends notification using macOS osascript
func (n *NotificationService) sendOSAScript(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(message), escapeAppleScript(title))
	cmd := exec.Command("osascript", "-e", script)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "osascript"),
			zap.Error(err))
		return err
	}
	return nil
}

// sendNotifySend sends notification using Linux notify-send
func (n *NotificationService) sendNotifySend(title, message string) error {
	cmd := exec.Command("notify-send", title, message)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "notify-send"),
			zap.Error(err))
		return err
	}
	return nil
}

// NotifyPlaylistQueued sends notification when a playlist is enqueued
func (n *NotificationService) NotifyPlaylistQueued(title string, count int) {
	n.Send("Playlist Queued", fmt.Sprintf("%s (%d videos)", truncateString(title, 40), count))
}

// NotifyPlaylistDone sends notification when every download of a playlist
// reached a terminal state
func (n *NotificationService) NotifyPlaylistDone(title string, progress *domain.PlaylistProgress) {
	message := fmt.Sprintf("%s: %d/%d videos downloaded",
		truncateString(title, 40), progress.Completed, progress.Total)
	n.Send("Playlist Finished", message)
}

// NotifyDownloadFailed sends notification when a video download fails for good
func (n *NotificationService) NotifyDownloadFailed(title string, index int) {
	n.Send("Download Failed", fmt.Sprintf("Video %d: %s", index, truncateString(title, 40)))
}

// escapeAppleScript escapes backslashes and double quotes so a title can
// sit inside an AppleScript string literal
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
