package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/feelsy/internal/config"
)

// Version information set via ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	verbose    bool
	configFile string
	projectDir string
)

var rootCmd = &cobra.Command{
	Use:   "feelsy",
	Short: "Emotion engine for agent tool activity",
	Long: `Feelsy watches an agent work and tells you how it feels about it.

It captures tool events from Claude Code hooks, classifies each one into
an emotion (rule catalog, creative LLM provider, or a hybrid of both),
tracks emotion sequences per session, and serves the resulting feed of
thoughts, GIFs, and viral moments over HTTP and SSE.

Configure in:
  - ~/.feelsy/config.yaml (global)
  - .feelsy/config.yaml (project-specific)`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("feelsy %s\n", Version)
		fmt.Printf("  commit: %s\n", Commit)
		fmt.Printf("  built:  %s\n", Date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Override config file path")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Override project directory")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads configuration the standard way: explicit file override
// first, then merged global+project config, then defaults.
func loadConfig() *config.Config {
	loader, err := config.NewLoader(projectDir)
	if err != nil {
		return config.DefaultConfig()
	}

	var cfg *config.Config
	if configFile != "" {
		cfg, err = loader.LoadFromFile(configFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// loadGlobalConfig is loadConfig without the project overlay, for daemon
// commands where per-project settings must not apply.
func loadGlobalConfig() *config.Config {
	loader, err := config.NewLoader("")
	if err != nil {
		return config.DefaultConfig()
	}

	var cfg *config.Config
	if configFile != "" {
		cfg, err = loader.LoadFromFile(configFile)
	} else {
		cfg, err = loader.LoadGlobalOnly()
	}
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}
