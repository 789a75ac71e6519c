package creative

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func anthropicTestConfig(baseURL string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Providers.Anthropic.APIKey = "test-key"
	cfg.Providers.Anthropic.BaseURL = baseURL
	return cfg
}

func TestAnthropicProviderClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "{\"cue\":\"victory lap\",\"intensity\":7,\"note\":\"stuck the landing\",\"display\":\"normal\",\"caption\":\"\",\"tags\":[\"win\"]}"}],
			"model": "test",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 40, "output_tokens": 25}
		}`))
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(anthropicTestConfig(server.URL))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	if !p.Available(context.Background()) {
		t.Fatal("provider should be available with an API key")
	}

	resp, err := p.Classify(context.Background(), &Request{ToolName: "Bash", ToolOutput: "done"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if resp.Cue != "victory lap" {
		t.Errorf("got cue %q, want victory lap", resp.Cue)
	}
	if resp.Intensity != 7 {
		t.Errorf("got intensity %d, want 7", resp.Intensity)
	}
	if resp.TokensUsed != 65 {
		t.Errorf("got tokens %d, want 65", resp.TokensUsed)
	}
}

func TestAnthropicProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"overloaded"}}`))
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(anthropicTestConfig(server.URL))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	if _, err := p.Classify(context.Background(), &Request{ToolName: "Bash"}); err == nil {
		t.Error("expected an error for a 429 response")
	}
}

func TestAnthropicProviderDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Anthropic.Enabled = false
	if _, err := NewAnthropicProvider(cfg); err == nil {
		t.Error("expected an error for a disabled provider")
	}
}

func TestAnthropicProviderUnavailableWithoutKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := DefaultConfig()
	p, err := NewAnthropicProvider(cfg)
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	if p.Available(context.Background()) {
		t.Error("provider should not be available without an API key")
	}
	if _, err := p.Classify(context.Background(), &Request{}); err == nil {
		t.Error("expected an error when classifying without a key")
	}
}
