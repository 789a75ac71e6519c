package creative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	anthropicAPIVersion   = "2023-06-01"
)

// AnthropicProvider implements the Provider interface using Anthropic's
// Messages API.
type AnthropicProvider struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
	available bool
}

// NewAnthropicProvider creates a new Anthropic API provider.
func NewAnthropicProvider(cfg *Config) (Provider, error) {
	apiCfg := cfg.Providers.Anthropic
	if !apiCfg.Enabled {
		return nil, fmt.Errorf("anthropic provider is disabled")
	}

	p := &AnthropicProvider{
		apiKey:    apiCfg.APIKey,
		model:     apiCfg.Model,
		maxTokens: apiCfg.MaxTokens,
		baseURL:   apiCfg.BaseURL,
		client:    &http.Client{},
	}

	if p.apiKey == "" {
		p.apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if p.model == "" {
		p.model = defaultAnthropicModel
	}
	if p.maxTokens == 0 {
		p.maxTokens = 300
	}
	if p.baseURL == "" {
		p.baseURL = defaultAnthropicURL
	}

	p.available = p.apiKey != ""

	return p, nil
}

// Type returns the provider type.
func (p *AnthropicProvider) Type() ProviderType {
	return ProviderAnthropic
}

// Name returns the human-readable provider name.
func (p *AnthropicProvider) Name() string {
	return fmt.Sprintf("Anthropic API (%s)", p.model)
}

// Available checks if the provider is available.
func (p *AnthropicProvider) Available(ctx context.Context) bool {
	return p.available
}

// Classify performs creative classification using the Anthropic API.
func (p *AnthropicProvider) Classify(ctx context.Context, req *Request) (*Response, error) {
	if !p.available {
		return nil, fmt.Errorf("anthropic API is not available (missing API key)")
	}

	apiReq := anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    classifyInstructions,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: buildPrompt(req),
			},
		},
	}

	reqBody, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var text string
	for _, content := range apiResp.Content {
		if content.Type == "text" {
			text = content.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	out, err := parseResponse(text, ProviderAnthropic)
	if err != nil {
		return nil, err
	}
	out.TokensUsed = apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens

	return out, nil
}

// Close releases any resources.
func (p *AnthropicProvider) Close() error {
	return nil
}

// anthropicRequest represents the API request structure.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage represents a message in the conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents the API response structure.
type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

// anthropicContent represents content in the response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// anthropicUsage represents token usage.
type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// anthropicError represents an API error response.
type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
