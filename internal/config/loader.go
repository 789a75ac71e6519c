package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	globalConfigDir  = ".feelsy"
	projectConfigDir = ".feelsy"
	configFileName   = "config.yaml"
)

// Loader handles loading and merging configuration files
type Loader struct {
	globalPath  string
	projectPath string
}

// NewLoader creates a new configuration loader
func NewLoader(projectDir string) (*Loader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	if projectDir == "" {
		projectDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	return &Loader{
		globalPath:  filepath.Join(homeDir, globalConfigDir, configFileName),
		projectPath: filepath.Join(projectDir, projectConfigDir, configFileName),
	}, nil
}

// Load loads and merges configuration from all sources
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Load global config if exists
	globalCfg, err := l.loadFile(l.globalPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}
	if globalCfg != nil {
		cfg = mergeConfigs(cfg, globalCfg)
	}

	// Load project config if exists
	projectCfg, err := l.loadFile(l.projectPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	if projectCfg != nil {
		cfg = mergeConfigs(cfg, projectCfg)
	}

	return cfg, nil
}

// LoadGlobalOnly loads configuration from the global config only, ignoring
// project config. Daemon commands use this so per-project overrides do not
// change daemon behavior.
func (l *Loader) LoadGlobalOnly() (*Config, error) {
	cfg := DefaultConfig()

	globalCfg, err := l.loadFile(l.globalPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}
	if globalCfg != nil {
		cfg = mergeConfigs(cfg, globalCfg)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	return l.loadFile(path)
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// mergeConfigs merges two configurations, with override taking precedence
func mergeConfigs(base, override *Config) *Config {
	result := &Config{
		Version: coalesce(override.Version, base.Version),
		Settings: Settings{
			LogLevel:   coalesce(override.Settings.LogLevel, base.Settings.LogLevel),
			LogFile:    coalesce(override.Settings.LogFile, base.Settings.LogFile),
			FeedFile:   coalesce(override.Settings.FeedFile, base.Settings.FeedFile),
			Classifier: mergeClassifierSettings(base.Settings.Classifier, override.Settings.Classifier),
			Store:      StoreSettings{Path: coalesce(override.Settings.Store.Path, base.Settings.Store.Path)},
			Daemon:     mergeDaemonSettings(base.Settings.Daemon, override.Settings.Daemon),
		},
	}

	// Section pointers are taken wholesale when the override sets them
	if override.Creative != nil {
		result.Creative = override.Creative
	} else {
		result.Creative = base.Creative
	}

	if override.Gif != nil {
		result.Gif = override.Gif
	} else {
		result.Gif = base.Gif
	}

	return result
}

// mergeClassifierSettings merges classifier settings, with override taking
// precedence for set values
func mergeClassifierSettings(base, override ClassifierSettings) ClassifierSettings {
	result := base

	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.HistoryCapacity != 0 {
		result.HistoryCapacity = override.HistoryCapacity
	}

	return result
}

// mergeDaemonSettings merges daemon settings, with override taking
// precedence for set values
func mergeDaemonSettings(base, override DaemonSettings) DaemonSettings {
	result := base

	if override.Port != 0 {
		result.Port = override.Port
	}
	if override.PollInterval != "" {
		result.PollInterval = override.PollInterval
	}

	return result
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// GlobalConfigPath returns the path to the global config file
func (l *Loader) GlobalConfigPath() string {
	return l.globalPath
}

// ProjectConfigPath returns the path to the project config file
func (l *Loader) ProjectConfigPath() string {
	return l.projectPath
}

// Exists checks if a config file exists at the given path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
