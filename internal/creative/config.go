package creative

import "time"

// Config holds all creative-classifier configuration.
type Config struct {
	// Enabled controls whether creative escalation is active.
	Enabled bool `yaml:"enabled"`

	// ProviderOrder specifies the fallback order for providers.
	ProviderOrder []ProviderType `yaml:"provider_order"`

	// Providers contains provider-specific configurations.
	Providers ProvidersConfig `yaml:"providers"`

	// Cache configures response caching.
	Cache CacheConfig `yaml:"cache"`

	// Timeout bounds each provider call.
	Timeout time.Duration `yaml:"timeout"`
}

// ProvidersConfig contains configuration for each provider type.
type ProvidersConfig struct {
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
}

// AnthropicConfig configures the Anthropic API provider.
type AnthropicConfig struct {
	// Enabled controls whether this provider is active.
	Enabled bool `yaml:"enabled"`

	// APIKey is the Anthropic API key.
	// If empty, reads from ANTHROPIC_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// Model specifies the model to use.
	Model string `yaml:"model"`

	// MaxTokens limits the response length.
	MaxTokens int `yaml:"max_tokens"`

	// BaseURL overrides the API endpoint (for proxies).
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig configures the OpenAI API provider.
type OpenAIConfig struct {
	// Enabled controls whether this provider is active.
	Enabled bool `yaml:"enabled"`

	// APIKey is the OpenAI API key.
	// If empty, reads from OPENAI_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// Model specifies the model to use.
	Model string `yaml:"model"`

	// MaxTokens limits the response length.
	MaxTokens int `yaml:"max_tokens"`

	// BaseURL overrides the API endpoint (for proxies).
	BaseURL string `yaml:"base_url"`
}

// CacheConfig configures response caching.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	Enabled bool `yaml:"enabled"`

	// MaxEntries is the maximum number of cached responses.
	MaxEntries int `yaml:"max_entries"`

	// TTL is the time-to-live for cached entries.
	TTL time.Duration `yaml:"ttl"`
}

// DefaultConfig returns the default creative configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled: false,
		ProviderOrder: []ProviderType{
			ProviderAnthropic,
			ProviderOpenAI,
		},
		Providers: ProvidersConfig{
			Anthropic: AnthropicConfig{
				Enabled:   true,
				Model:     "claude-haiku-4-5-20251001",
				MaxTokens: 300,
			},
			OpenAI: OpenAIConfig{
				Enabled:   false,
				Model:     "gpt-4o-mini",
				MaxTokens: 300,
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 500,
			TTL:        10 * time.Minute,
		},
		Timeout: 10 * time.Second,
	}
}

// Validate validates the creative configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	validTypes := map[ProviderType]bool{
		ProviderAnthropic: true,
		ProviderOpenAI:    true,
	}
	for _, pt := range c.ProviderOrder {
		if !validTypes[pt] {
			return &ConfigError{Field: "provider_order", Message: "invalid provider type: " + string(pt)}
		}
	}

	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Message: "must be positive"}
	}

	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "creative config error: " + e.Field + ": " + e.Message
}
