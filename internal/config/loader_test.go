package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewLoader_WithProjectDir(t *testing.T) {
	tmpDir := t.TempDir()

	loader, err := NewLoader(tmpDir)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	expectedProjectPath := filepath.Join(tmpDir, ".feelsy", "config.yaml")
	if loader.projectPath != expectedProjectPath {
		t.Errorf("got projectPath=%q, want %q", loader.projectPath, expectedProjectPath)
	}
	if filepath.Base(loader.globalPath) != "config.yaml" {
		t.Errorf("got globalPath=%q, want a config.yaml path", loader.globalPath)
	}
}

func TestLoader_Load_NoConfigFiles(t *testing.T) {
	tmpDir := t.TempDir()

	loader := &Loader{
		globalPath:  filepath.Join(tmpDir, "global", ".feelsy", "config.yaml"),
		projectPath: filepath.Join(tmpDir, "project", ".feelsy", "config.yaml"),
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Should return default config
	if cfg.Version != "1" {
		t.Errorf("got Version=%q, want \"1\"", cfg.Version)
	}
	if cfg.Settings.Classifier.Mode != "hybrid" {
		t.Errorf("got Mode=%q, want \"hybrid\"", cfg.Settings.Classifier.Mode)
	}
	if cfg.Settings.Daemon.Port != 8765 {
		t.Errorf("got Port=%d, want 8765", cfg.Settings.Daemon.Port)
	}
	if cfg.Creative == nil || cfg.Creative.Enabled {
		t.Error("expected creative section present and disabled by default")
	}
}

func TestLoader_Load_GlobalOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	globalDir := filepath.Join(tmpDir, "global", ".feelsy")
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		t.Fatal(err)
	}

	globalConfig := `version: "1"
settings:
  log_level: debug
  classifier:
    mode: rule
  daemon:
    port: 9100
`
	if err := os.WriteFile(filepath.Join(globalDir, "config.yaml"), []byte(globalConfig), 0644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{
		globalPath:  filepath.Join(globalDir, "config.yaml"),
		projectPath: filepath.Join(tmpDir, "project", ".feelsy", "config.yaml"),
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.LogLevel != "debug" {
		t.Errorf("got LogLevel=%q, want \"debug\"", cfg.Settings.LogLevel)
	}
	if cfg.Settings.Classifier.Mode != "rule" {
		t.Errorf("got Mode=%q, want \"rule\"", cfg.Settings.Classifier.Mode)
	}
	if cfg.Settings.Daemon.Port != 9100 {
		t.Errorf("got Port=%d, want 9100", cfg.Settings.Daemon.Port)
	}
	// Unset fields keep defaults
	if cfg.Settings.Classifier.HistoryCapacity != 20 {
		t.Errorf("got HistoryCapacity=%d, want 20", cfg.Settings.Classifier.HistoryCapacity)
	}
	if cfg.Settings.Daemon.PollInterval != "250ms" {
		t.Errorf("got PollInterval=%q, want \"250ms\"", cfg.Settings.Daemon.PollInterval)
	}
}

func TestLoader_Load_ProjectOverridesGlobal(t *testing.T) {
	tmpDir := t.TempDir()

	globalDir := filepath.Join(tmpDir, "global", ".feelsy")
	projectDir := filepath.Join(tmpDir, "project", ".feelsy")
	for _, dir := range []string{globalDir, projectDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	globalConfig := `settings:
  log_level: debug
  feed_file: /var/feelsy/feed.jsonl
`
	projectConfig := `settings:
  log_level: warn
`
	if err := os.WriteFile(filepath.Join(globalDir, "config.yaml"), []byte(globalConfig), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{
		globalPath:  filepath.Join(globalDir, "config.yaml"),
		projectPath: filepath.Join(projectDir, "config.yaml"),
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.LogLevel != "warn" {
		t.Errorf("got LogLevel=%q, want \"warn\"", cfg.Settings.LogLevel)
	}
	// Project config left feed_file unset; global value survives
	if cfg.Settings.FeedFile != "/var/feelsy/feed.jsonl" {
		t.Errorf("got FeedFile=%q, want global value", cfg.Settings.FeedFile)
	}
}

func TestLoader_LoadGlobalOnly_IgnoresProject(t *testing.T) {
	tmpDir := t.TempDir()

	projectDir := filepath.Join(tmpDir, "project", ".feelsy")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}
	projectConfig := `settings:
  log_level: trace
`
	if err := os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{
		globalPath:  filepath.Join(tmpDir, "global", ".feelsy", "config.yaml"),
		projectPath: filepath.Join(projectDir, "config.yaml"),
	}

	cfg, err := loader.LoadGlobalOnly()
	if err != nil {
		t.Fatalf("LoadGlobalOnly failed: %v", err)
	}

	if cfg.Settings.LogLevel != "info" {
		t.Errorf("got LogLevel=%q, want default \"info\"", cfg.Settings.LogLevel)
	}
}

func TestLoader_Load_CreativeSectionTakenWholesale(t *testing.T) {
	tmpDir := t.TempDir()

	globalDir := filepath.Join(tmpDir, "global", ".feelsy")
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		t.Fatal(err)
	}

	globalConfig := `creative:
  enabled: true
  provider_order: [openai]
  timeout: 5s
gif:
  api_key: test-key
`
	if err := os.WriteFile(filepath.Join(globalDir, "config.yaml"), []byte(globalConfig), 0644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{
		globalPath:  filepath.Join(globalDir, "config.yaml"),
		projectPath: filepath.Join(tmpDir, "project", ".feelsy", "config.yaml"),
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Creative == nil || !cfg.Creative.Enabled {
		t.Fatal("expected creative section enabled")
	}
	if len(cfg.Creative.ProviderOrder) != 1 || string(cfg.Creative.ProviderOrder[0]) != "openai" {
		t.Errorf("got ProviderOrder=%v, want [openai]", cfg.Creative.ProviderOrder)
	}
	if cfg.Creative.Timeout != 5*time.Second {
		t.Errorf("got Timeout=%v, want 5s", cfg.Creative.Timeout)
	}
	if cfg.Gif == nil || cfg.Gif.APIKey != "test-key" {
		t.Error("expected gif api_key from global config")
	}
}

func TestLoader_Load_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()

	globalDir := filepath.Join(tmpDir, "global", ".feelsy")
	if err := os.MkdirAll(globalDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(globalDir, "config.yaml"), []byte("settings: ["), 0644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{
		globalPath:  filepath.Join(globalDir, "config.yaml"),
		projectPath: filepath.Join(tmpDir, "project", ".feelsy", "config.yaml"),
	}

	if _, err := loader.Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty mode allowed", mutate: func(c *Config) { c.Settings.Classifier.Mode = "" }, wantErr: false},
		{name: "bad mode", mutate: func(c *Config) { c.Settings.Classifier.Mode = "psychic" }, wantErr: true},
		{name: "negative capacity", mutate: func(c *Config) { c.Settings.Classifier.HistoryCapacity = -1 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Settings.Daemon.Port = 70000 }, wantErr: true},
		{name: "bad poll interval", mutate: func(c *Config) { c.Settings.Daemon.PollInterval = "sometimes" }, wantErr: true},
		{name: "bad creative timeout", mutate: func(c *Config) {
			c.Creative.Enabled = true
			c.Creative.Timeout = 0
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestDaemonSettings_PollIntervalDuration(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		want     time.Duration
	}{
		{name: "unset", interval: "", want: 250 * time.Millisecond},
		{name: "valid", interval: "1s", want: time.Second},
		{name: "invalid", interval: "often", want: 250 * time.Millisecond},
		{name: "negative", interval: "-5s", want: 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DaemonSettings{PollInterval: tt.interval}
			if got := d.PollIntervalDuration(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
