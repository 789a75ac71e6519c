// Package gif looks up reaction GIFs on the Giphy search API, with a
// per-term disk cache and a fixed fallback so lookups never fail hard.
package gif

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ihavespoons/feelsy/internal/logger"
)

const (
	defaultGiphyURL = "https://api.giphy.com/v1/gifs/search"
	searchLimit     = 25
	searchRating    = "pg-13"
)

// fallbackGIF is returned whenever the API is unreachable, rate limited,
// or has nothing for the term.
var fallbackGIF = GIF{
	URL:   "https://media.giphy.com/media/3o7bu3XilJ5BOiSGic/giphy.gif",
	Title: "thinking",
	ID:    "fallback",
}

// GIF is one lookup result.
type GIF struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	ID    string `json:"id"`
}

// Config configures the Giphy client.
type Config struct {
	// APIKey is the Giphy API key.
	// If empty, reads from GIPHY_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the search endpoint.
	BaseURL string `yaml:"base_url"`

	// CacheFile is where the per-term result cache is persisted.
	CacheFile string `yaml:"cache_file"`
}

// Client fetches GIFs for search cues. Each term's full result page is
// cached on disk, so repeat cues rotate through cached results without
// touching the API. Safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	rng     *rand.Rand

	mu        sync.Mutex
	cache     map[string][]GIF
	cacheFile string
}

// NewClient creates a client and loads any existing disk cache. A nil rng
// gets a time-seeded one.
func NewClient(cfg Config, rng *rand.Rand) *Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GIPHY_API_KEY")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGiphyURL
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 2),
		rng:       rng,
		cache:     make(map[string][]GIF),
		cacheFile: cfg.CacheFile,
	}
	c.loadCache()
	return c
}

// Available returns true if the Giphy API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Lookup returns a GIF for the search term. Cache first, then the API;
// any failure degrades to the fallback GIF rather than an error.
func (c *Client) Lookup(ctx context.Context, term string) GIF {
	if term == "" {
		return fallbackGIF
	}

	if g, ok := c.cached(term); ok {
		return g
	}

	if !c.Available() {
		return fallbackGIF
	}

	gifs, err := c.search(ctx, term)
	if err != nil || len(gifs) == 0 {
		logger.Warn().
			Str("term", term).
			Err(err).
			Msg("GIF lookup failed, using fallback")
		return fallbackGIF
	}

	c.store(term, gifs)
	return gifs[c.rng.Intn(len(gifs))]
}

func (c *Client) cached(term string) (GIF, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gifs := c.cache[term]
	if len(gifs) == 0 {
		return GIF{}, false
	}
	return gifs[c.rng.Intn(len(gifs))], true
}

func (c *Client) store(term string, gifs []GIF) {
	c.mu.Lock()
	c.cache[term] = gifs
	c.mu.Unlock()
	c.saveCache()
}

// search queries the Giphy API with retry on 429 and 5xx, honoring
// Retry-After on rate limit responses.
func (c *Client) search(ctx context.Context, term string) ([]GIF, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("q", term)
	q.Set("limit", strconv.Itoa(searchLimit))
	q.Set("rating", searchRating)
	q.Set("lang", "en")
	endpoint := c.baseURL + "?" + q.Encode()

	body, err := c.doWithRetry(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var apiResp giphyResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	gifs := make([]GIF, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		if d.Images.Original.URL == "" {
			continue
		}
		gifs = append(gifs, GIF{
			URL:   d.Images.Original.URL,
			Title: d.Title,
			ID:    d.ID,
		})
	}
	return gifs, nil
}

func (c *Client) doWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	maxRetries := 2
	backoffs := []time.Duration{time.Second, 2 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoffs[attempt]):
				}
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("giphy API error (status %d)", resp.StatusCode)
			if attempt < maxRetries {
				delay := backoffs[attempt]
				if ra := resp.Header.Get("Retry-After"); ra != "" {
					if seconds, parseErr := strconv.Atoi(ra); parseErr == nil && seconds > 0 {
						delay = time.Duration(seconds) * time.Second
						if delay > 30*time.Second {
							delay = 30 * time.Second
						}
					}
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			}
			continue
		}

		return nil, fmt.Errorf("giphy API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("giphy API request failed after retries: %w", lastErr)
}

func (c *Client) loadCache() {
	if c.cacheFile == "" {
		return
	}
	data, err := os.ReadFile(c.cacheFile)
	if err != nil {
		return
	}
	var cache map[string][]GIF
	if err := json.Unmarshal(data, &cache); err != nil {
		logger.Warn().Err(err).Msg("Failed to parse GIF cache, starting empty")
		return
	}
	c.mu.Lock()
	c.cache = cache
	c.mu.Unlock()
	logger.Debug().Int("terms", len(cache)).Msg("Loaded GIF cache")
}

func (c *Client) saveCache() {
	if c.cacheFile == "" {
		return
	}

	c.mu.Lock()
	data, err := json.Marshal(c.cache)
	c.mu.Unlock()
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.cacheFile), 0o755); err != nil {
		logger.Warn().Err(err).Msg("Failed to create GIF cache directory")
		return
	}
	if err := os.WriteFile(c.cacheFile, data, 0o644); err != nil {
		logger.Warn().Err(err).Msg("Failed to save GIF cache")
	}
}

// giphyResponse is the Giphy search API response shape.
type giphyResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
		} `json:"images"`
	} `json:"data"`
}
