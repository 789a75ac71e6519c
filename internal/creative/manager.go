package creative

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ihavespoons/feelsy/internal/emotion"
	"github.com/ihavespoons/feelsy/internal/logger"
)

// Errors returned by the manager.
var (
	ErrDisabled    = errors.New("creative classification is disabled")
	ErrNoProviders = errors.New("no providers available")
)

// ProviderFactory creates providers of a given type.
type ProviderFactory func(cfg *Config) (Provider, error)

// DefaultFactories returns the built-in provider factories.
func DefaultFactories() map[ProviderType]ProviderFactory {
	return map[ProviderType]ProviderFactory{
		ProviderAnthropic: NewAnthropicProvider,
		ProviderOpenAI:    NewOpenAIProvider,
	}
}

// Manager routes creative classification across providers with caching
// and per-call timeouts. It satisfies emotion.CreativeClassifier.
type Manager struct {
	cfg       *Config
	providers map[ProviderType]Provider
	cache     *responseCache
	mu        sync.RWMutex
}

// NewManager creates a new creative manager.
func NewManager(cfg *Config, factories map[ProviderType]ProviderFactory) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid creative config: %w", err)
	}

	m := &Manager{
		cfg:       cfg,
		providers: make(map[ProviderType]Provider),
	}

	if cfg.Cache.Enabled {
		m.cache = newResponseCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	if factories != nil {
		for _, pt := range cfg.ProviderOrder {
			factory, ok := factories[pt]
			if !ok {
				continue
			}

			provider, err := factory(cfg)
			if err != nil {
				logger.Warn().
					Str("provider", string(pt)).
					Err(err).
					Msg("Failed to create provider, skipping")
				continue
			}

			m.providers[pt] = provider
		}
	}

	return m, nil
}

// Classify asks the provider chain for a creative read on the event,
// returning the first success. All providers failing is an error; the
// caller decides what the fallback looks like.
func (m *Manager) Classify(ctx context.Context, ev *emotion.Event) (*emotion.CreativeResult, error) {
	if !m.cfg.Enabled {
		return nil, ErrDisabled
	}

	req := &Request{
		SessionID:  ev.SessionID,
		ToolName:   ev.ToolName,
		ToolInput:  ev.ToolInput,
		ToolOutput: ev.ToolOutput,
		Thinking:   ev.Thinking,
		Success:    ev.Success,
	}

	resp, err := m.classify(ctx, req)
	if err != nil {
		return nil, err
	}

	return &emotion.CreativeResult{
		Cue:       resp.Cue,
		Intensity: resp.Intensity,
		Note:      resp.Note,
		Display:   resp.Display,
		Caption:   resp.Caption,
		Tags:      resp.Tags,
	}, nil
}

func (m *Manager) classify(ctx context.Context, req *Request) (*Response, error) {
	var cacheKey string
	if m.cache != nil {
		cacheKey = hashKey(req.ToolName, req.ToolInput, req.ToolOutput, req.Thinking)
		if cached, ok := m.cache.Get(cacheKey); ok {
			cached.Cached = true
			logger.Debug().
				Str("cache_key", cacheKey[:8]).
				Msg("Cache hit for creative classification")
			return cached, nil
		}
	}

	var lastErr error
	for _, pt := range m.cfg.ProviderOrder {
		provider, ok := m.providers[pt]
		if !ok {
			continue
		}

		if !provider.Available(ctx) {
			logger.Debug().
				Str("provider", string(pt)).
				Msg("Provider not available, trying next")
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
		start := time.Now()
		resp, err := provider.Classify(callCtx, req)
		cancel()

		if err != nil {
			lastErr = err
			logger.Warn().
				Str("provider", string(pt)).
				Err(err).
				Msg("Provider classification failed, trying next")
			continue
		}

		resp.Latency = time.Since(start)

		if m.cache != nil {
			m.cache.Set(cacheKey, resp)
		}

		logger.Debug().
			Str("provider", string(pt)).
			Str("cue", resp.Cue).
			Int("intensity", resp.Intensity).
			Dur("latency", resp.Latency).
			Msg("Creative classification complete")

		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all providers failed: %w", lastErr)
	}
	return nil, ErrNoProviders
}

// AvailableProviders returns the currently available provider types.
func (m *Manager) AvailableProviders(ctx context.Context) []ProviderType {
	var available []ProviderType
	for _, pt := range m.cfg.ProviderOrder {
		if provider, ok := m.providers[pt]; ok && provider.Available(ctx) {
			available = append(available, pt)
		}
	}
	return available
}

// Close releases all provider resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, provider := range m.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}
	return nil
}
