package domain

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Queue        QueueConfig        `mapstructure:"queue"`
	YTDLP        YTDLPConfig        `mapstructure:"ytdlp"`
	FFmpeg       FFmpegConfig       `mapstructure:"ffmpeg"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir          string        `mapstructure:"base_dir"`
	CookiesDir       string        `mapstructure:"cookies_dir"`
	LogsDir          string        `mapstructure:"logs_dir"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	ConcurrentLimit  int           `mapstructure:"concurrent_limit"`
	AutoStartWorkers bool          `mapstructure:"auto_start_workers"`
}

// QueueConfig contains queue-related configuration
type QueueConfig struct {
	DatabasePath    string        `mapstructure:"database_path"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
	AutoExitOnEmpty bool          `mapstructure:"auto_exit_on_empty"`
	EmptyWaitTime   time.Duration `mapstructure:"empty_wait_time"`
}

// YTDLPConfig contains yt-dlp invocation configuration
type YTDLPConfig struct {
	Binary         string        `mapstructure:"binary"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
}

// FFmpegConfig contains ffmpeg probe configuration
type FFmpegConfig struct {
	Binary string `mapstructure:"binary"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send, etc.
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// termuxPrefix is the PREFIX value that identifies a Termux environment
const termuxPrefix = "com.termux"

// DefaultBaseDir picks the download directory for the current environment:
// the shared storage downloads folder on Termux, the user Downloads folder
// on Windows, $HOME/Downloads elsewhere. Only a default; configuration
// always wins.
func DefaultBaseDir() string {
	if strings.Contains(os.Getenv("PREFIX"), termuxPrefix) {
		return "/data/data/com.termux/files/home/storage/downloads"
	}
	if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, "Downloads")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "downloads"
	}
	return filepath.Join(home, "Downloads")
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	base := DefaultBaseDir()
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Download: DownloadConfig{
			BaseDir:          base,
			CookiesDir:       "$HOME/.ytpl/cookies",
			LogsDir:          "$HOME/.ytpl/logs",
			MaxRetries:       3,
			RetryDelay:       30 * time.Second,
			ConcurrentLimit:  2,
			AutoStartWorkers: true,
		},
		Queue: QueueConfig{
			DatabasePath:    "$HOME/.ytpl/queue.db",
			CheckInterval:   5 * time.Second,
			AutoExitOnEmpty: false,
			EmptyWaitTime:   5 * time.Minute,
		},
		YTDLP: YTDLPConfig{
			Binary:         "yt-dlp",
			ResolveTimeout: 2 * time.Minute,
		},
		FFmpeg: FFmpegConfig{
			Binary: "ffmpeg",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
