package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ihavespoons/feelsy/internal/creative"
	"github.com/ihavespoons/feelsy/internal/emotion"
	"github.com/ihavespoons/feelsy/internal/gif"
)

// Config represents the complete feelsy configuration
type Config struct {
	Version  string           `yaml:"version"`
	Settings Settings         `yaml:"settings"`
	Creative *creative.Config `yaml:"creative,omitempty"`
	Gif      *gif.Config      `yaml:"gif,omitempty"`
}

// Settings contains global configuration settings
type Settings struct {
	LogLevel   string             `yaml:"log_level"`
	LogFile    string             `yaml:"log_file,omitempty"`
	FeedFile   string             `yaml:"feed_file,omitempty"`
	Classifier ClassifierSettings `yaml:"classifier"`
	Store      StoreSettings      `yaml:"store"`
	Daemon     DaemonSettings     `yaml:"daemon"`
}

// ClassifierSettings configures the emotion classification engine
type ClassifierSettings struct {
	// Mode selects the classification strategy: rule, creative, or hybrid
	Mode string `yaml:"mode"`

	// HistoryCapacity bounds the per-session emotion history used for
	// sequence detection
	HistoryCapacity int `yaml:"history_capacity,omitempty"`
}

// StoreSettings configures thought persistence
type StoreSettings struct {
	// Path is the sqlite database file. Empty means ~/.feelsy/feelsy.db
	Path string `yaml:"path,omitempty"`
}

// DaemonSettings contains daemon-specific settings
type DaemonSettings struct {
	Port int `yaml:"port,omitempty"`

	// PollInterval is how often the daemon checks the feed file for new
	// entries, as a Go duration string (e.g. "250ms")
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// PollIntervalDuration parses the poll interval, falling back to the
// default when unset or invalid
func (d DaemonSettings) PollIntervalDuration() time.Duration {
	if d.PollInterval == "" {
		return 250 * time.Millisecond
	}
	parsed, err := time.ParseDuration(d.PollInterval)
	if err != nil || parsed <= 0 {
		return 250 * time.Millisecond
	}
	return parsed
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Settings: Settings{
			LogLevel: "info",
			Classifier: ClassifierSettings{
				Mode:            string(emotion.ModeHybrid),
				HistoryCapacity: emotion.DefaultHistoryCapacity,
			},
			Daemon: DaemonSettings{
				Port:         8765,
				PollInterval: "250ms",
			},
		},
		Creative: creative.DefaultConfig(),
		Gif:      &gif.Config{},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	switch mode := c.Settings.Classifier.Mode; emotion.Mode(mode) {
	case emotion.ModeRule, emotion.ModeCreative, emotion.ModeHybrid:
	default:
		if mode != "" {
			return fmt.Errorf("invalid classifier mode: %q", mode)
		}
	}

	if c.Settings.Classifier.HistoryCapacity < 0 {
		return fmt.Errorf("classifier history_capacity must not be negative")
	}

	if port := c.Settings.Daemon.Port; port < 0 || port > 65535 {
		return fmt.Errorf("invalid daemon port: %d", port)
	}

	if iv := c.Settings.Daemon.PollInterval; iv != "" {
		if _, err := time.ParseDuration(iv); err != nil {
			return fmt.Errorf("invalid daemon poll_interval: %w", err)
		}
	}

	if c.Creative != nil {
		if err := c.Creative.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// FeedFilePath resolves the feed file path, defaulting to
// ~/.feelsy/feed.jsonl when not configured
func (c *Config) FeedFilePath() (string, error) {
	if c.Settings.FeedFile != "" {
		return c.Settings.FeedFile, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".feelsy", "feed.jsonl"), nil
}
