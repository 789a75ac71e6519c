package gif

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func giphyHandler(t *testing.T, calls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Query().Get("api_key") == "" {
			t.Error("missing api_key query parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "g1", "title": "first", "images": {"original": {"url": "https://example.com/1.gif"}}},
				{"id": "g2", "title": "second", "images": {"original": {"url": "https://example.com/2.gif"}}}
			]
		}`))
	}
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(Config{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		CacheFile: filepath.Join(t.TempDir(), "gif-cache.json"),
	}, rand.New(rand.NewSource(1)))
}

func TestLookupFetchesAndCaches(t *testing.T) {
	calls := 0
	server := httptest.NewServer(giphyHandler(t, &calls))
	defer server.Close()

	c := testClient(t, server.URL)

	g := c.Lookup(context.Background(), "victory celebration")
	if g.ID != "g1" && g.ID != "g2" {
		t.Fatalf("got unexpected GIF %+v", g)
	}

	// Second lookup for the same term comes from cache.
	c.Lookup(context.Background(), "victory celebration")
	if calls != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestLookupFallbacks(t *testing.T) {
	t.Run("empty term", func(t *testing.T) {
		c := testClient(t, "http://127.0.0.1:0")
		if g := c.Lookup(context.Background(), ""); g.ID != "fallback" {
			t.Errorf("got %+v, want fallback", g)
		}
	})

	t.Run("no API key", func(t *testing.T) {
		t.Setenv("GIPHY_API_KEY", "")
		c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, rand.New(rand.NewSource(1)))
		if g := c.Lookup(context.Background(), "anything"); g.ID != "fallback" {
			t.Errorf("got %+v, want fallback", g)
		}
	})

	t.Run("empty result set", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": []}`))
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		if g := c.Lookup(context.Background(), "nothing matches this"); g.ID != "fallback" {
			t.Errorf("got %+v, want fallback", g)
		}
	})

	t.Run("client error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		if g := c.Lookup(context.Background(), "bad key"); g.ID != "fallback" {
			t.Errorf("got %+v, want fallback", g)
		}
	})
}

func TestLookupRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": "g1", "title": "ok", "images": {"original": {"url": "https://example.com/1.gif"}}}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	g := c.Lookup(context.Background(), "retry me")
	if g.ID != "g1" {
		t.Errorf("got %+v, want g1 after retry", g)
	}
	if calls != 2 {
		t.Errorf("API called %d times, want 2", calls)
	}
}

func TestCachePersistsAcrossClients(t *testing.T) {
	calls := 0
	server := httptest.NewServer(giphyHandler(t, &calls))
	defer server.Close()

	cacheFile := filepath.Join(t.TempDir(), "gif-cache.json")
	cfg := Config{APIKey: "test-key", BaseURL: server.URL, CacheFile: cacheFile}

	c1 := NewClient(cfg, rand.New(rand.NewSource(1)))
	c1.Lookup(context.Background(), "persisted term")

	// Verify the cache file holds the fetched results.
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		t.Fatalf("reading cache file: %v", err)
	}
	var cache map[string][]GIF
	if err := json.Unmarshal(data, &cache); err != nil {
		t.Fatalf("parsing cache file: %v", err)
	}
	if len(cache["persisted term"]) != 2 {
		t.Fatalf("cache file has %d entries for term, want 2", len(cache["persisted term"]))
	}

	// A fresh client reuses the disk cache without calling the API.
	c2 := NewClient(cfg, rand.New(rand.NewSource(1)))
	c2.Lookup(context.Background(), "persisted term")
	if calls != 1 {
		t.Errorf("API called %d times across clients, want 1", calls)
	}
}

func TestCorruptCacheFileStartsEmpty(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "gif-cache.json")
	if err := os.WriteFile(cacheFile, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:0", CacheFile: cacheFile}, rand.New(rand.NewSource(1)))
	if len(c.cache) != 0 {
		t.Errorf("expected empty cache, got %d terms", len(c.cache))
	}
}
