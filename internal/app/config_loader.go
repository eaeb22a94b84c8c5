package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/yt-playlist-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	// Set up viper
	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ytpl")
		v.AddConfigPath("/etc/ytpl")
	}

	// Register defaults with viper. AutomaticEnv only surfaces env values
	// for keys viper knows about, so every key must be registered even
	// though the zero config already carries the default values.
	setDefaults(v, config)

	// Read environment variables
	v.SetEnvPrefix("YTPL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in paths
	config = expandPaths(config)

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every config key with viper
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)

	v.SetDefault("download.base_dir", config.Download.BaseDir)
	v.SetDefault("download.cookies_dir", config.Download.CookiesDir)
	v.SetDefault("download.logs_dir", config.Download.LogsDir)
	v.SetDefault("download.max_retries", config.Download.MaxRetries)
	v.SetDefault("download.retry_delay", config.Download.RetryDelay)
	v.SetDefault("download.concurrent_limit", config.Download.ConcurrentLimit)
	v.SetDefault("download.auto_start_workers", config.Download.AutoStartWorkers)

	v.SetDefault("queue.database_path", config.Queue.DatabasePath)
	v.SetDefault("queue.check_interval", config.Queue.CheckInterval)
	v.SetDefault("queue.auto_exit_on_empty", config.Queue.AutoExitOnEmpty)
	v.SetDefault("queue.empty_wait_time", config.Queue.EmptyWaitTime)

	v.SetDefault("ytdlp.binary", config.YTDLP.Binary)
	v.SetDefault("ytdlp.resolve_timeout", config.YTDLP.ResolveTimeout)

	v.SetDefault("ffmpeg.binary", config.FFmpeg.Binary)

	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.method", config.Notification.Method)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.BaseDir = expandPath(config.Download.BaseDir)
	config.Download.CookiesDir = expandPath(config.Download.CookiesDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Queue.DatabasePath = expandPath(config.Queue.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	// Expand environment variables
	path = os.ExpandEnv(path)

	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.BaseDir == "" {
		return fmt.Errorf("download base directory not configured")
	}

	if config.Download.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if config.Download.ConcurrentLimit < 1 {
		return fmt.Errorf("concurrent limit must be at least 1")
	}

	if config.Queue.DatabasePath == "" {
		return fmt.Errorf("queue database path not configured")
	}

	if config.YTDLP.Binary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.FFmpeg.Binary == "" {
		return fmt.Errorf("ffmpeg binary not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
