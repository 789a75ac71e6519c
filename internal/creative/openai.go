package creative

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements the Provider interface using OpenAI's
// Responses API.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	available bool
}

// NewOpenAIProvider creates a new OpenAI API provider.
func NewOpenAIProvider(cfg *Config) (Provider, error) {
	apiCfg := cfg.Providers.OpenAI
	if !apiCfg.Enabled {
		return nil, fmt.Errorf("openai provider is disabled")
	}

	apiKey := apiCfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if apiCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(apiCfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	p := &OpenAIProvider{
		client:    &client,
		model:     apiCfg.Model,
		maxTokens: apiCfg.MaxTokens,
		available: apiKey != "",
	}

	if p.model == "" {
		p.model = defaultOpenAIModel
	}
	if p.maxTokens == 0 {
		p.maxTokens = 300
	}

	return p, nil
}

// Type returns the provider type.
func (p *OpenAIProvider) Type() ProviderType {
	return ProviderOpenAI
}

// Name returns the human-readable provider name.
func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("OpenAI API (%s)", p.model)
}

// Available checks if the provider is available.
func (p *OpenAIProvider) Available(ctx context.Context) bool {
	return p.available
}

// Classify performs creative classification using the OpenAI Responses API.
func (p *OpenAIProvider) Classify(ctx context.Context, req *Request) (*Response, error) {
	if !p.available {
		return nil, fmt.Errorf("openai API is not available (missing API key)")
	}

	params := responses.ResponseNewParams{
		Model:           p.model,
		MaxOutputTokens: openai.Int(int64(p.maxTokens)),
		Instructions:    openai.String(classifyInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(buildPrompt(req), responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := callWithRetry(ctx, p.client, params)
	if err != nil {
		return nil, err
	}

	text := resp.OutputText()
	if text == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	out, err := parseResponse(text, ProviderOpenAI)
	if err != nil {
		return nil, err
	}
	out.TokensUsed = int(resp.Usage.InputTokens + resp.Usage.OutputTokens)

	return out, nil
}

// Close releases any resources.
func (p *OpenAIProvider) Close() error {
	return nil
}

// callWithRetry retries transient OpenAI failures with a short backoff.
// Non-retryable errors surface immediately.
func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	waitTimes := []time.Duration{time.Second, 3 * time.Second, 6 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableError(err) || attempt == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTimes[attempt]):
		}
	}
	return nil, lastErr
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "server_error") ||
		strings.Contains(errStr, "internal server error")
}
