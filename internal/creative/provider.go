// Package creative provides multi-provider LLM escalation for events the
// rule-based classifier scores with low confidence.
package creative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProviderType identifies the LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// Provider defines the interface for creative classification providers.
type Provider interface {
	// Type returns the provider type identifier.
	Type() ProviderType

	// Name returns the human-readable provider name.
	Name() string

	// Available checks if the provider is currently configured and usable.
	Available(ctx context.Context) bool

	// Classify asks the provider for a creative read on the event.
	Classify(ctx context.Context, req *Request) (*Response, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Request contains the event data sent to a provider.
type Request struct {
	// SessionID identifies the session.
	SessionID string

	// ToolName is the name of the tool that ran.
	ToolName string

	// ToolInput is the summarized tool input.
	ToolInput string

	// ToolOutput is the truncated tool output.
	ToolOutput string

	// Thinking is the captured reasoning excerpt, if any.
	Thinking string

	// Success is the tri-state outcome of the tool run.
	Success *bool
}

// Response contains a provider's creative classification.
type Response struct {
	// Cue is the media search cue.
	Cue string

	// Intensity is the provider's 1-10 intensity estimate.
	Intensity int

	// Note is a short commentary on what is happening.
	Note string

	// Display is the suggested display directive.
	Display string

	// Caption is an optional overlay caption.
	Caption string

	// Tags are optional free-form tags.
	Tags []string

	// ProviderType identifies which provider produced this response.
	ProviderType ProviderType

	// TokensUsed is the number of tokens consumed.
	TokensUsed int

	// Latency is how long the call took.
	Latency time.Duration

	// Cached indicates this response came from cache.
	Cached bool
}

const classifyInstructions = `You are a sharp, funny observer watching an AI coding agent work.
Given one tool execution, respond with a single JSON object and nothing else:

{
  "cue": "<2-5 word search phrase for a reaction GIF>",
  "intensity": <integer 1-10>,
  "note": "<one-sentence commentary, under 120 characters>",
  "display": "<one of: normal, fullscreen, split, chaos>",
  "caption": "<optional short overlay caption, may be empty>",
  "tags": ["<optional free-form tags>"]
}

Be specific to what actually happened. No markdown, no surrounding text.`

// buildPrompt renders the event as the user message for a provider call.
func buildPrompt(req *Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", req.ToolName)
	if req.ToolInput != "" {
		fmt.Fprintf(&b, "Input: %s\n", req.ToolInput)
	}
	if req.ToolOutput != "" {
		fmt.Fprintf(&b, "Output: %s\n", req.ToolOutput)
	}
	if req.Success != nil {
		fmt.Fprintf(&b, "Succeeded: %t\n", *req.Success)
	}
	if req.Thinking != "" {
		fmt.Fprintf(&b, "\nThe agent's reasoning:\n%s\n", req.Thinking)
	}
	return b.String()
}

// creativePayload is the JSON shape providers are asked to emit.
type creativePayload struct {
	Cue       string   `json:"cue"`
	Intensity int      `json:"intensity"`
	Note      string   `json:"note"`
	Display   string   `json:"display"`
	Caption   string   `json:"caption"`
	Tags      []string `json:"tags"`
}

// parseResponse extracts the JSON payload from provider output. Models
// sometimes wrap the object in prose or code fences, so after a direct
// unmarshal fails we scan for the first balanced JSON object.
func parseResponse(text string, pt ProviderType) (*Response, error) {
	var payload creativePayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.Cue != "" {
		return payloadToResponse(payload, pt), nil
	}

	if start := findJSONStart(text); start >= 0 {
		if end := findJSONEnd(text, start); end > start {
			jsonText := text[start : end+1]
			if err := json.Unmarshal([]byte(jsonText), &payload); err == nil && payload.Cue != "" {
				return payloadToResponse(payload, pt), nil
			}
		}
	}

	return nil, fmt.Errorf("no creative JSON in provider response")
}

func payloadToResponse(p creativePayload, pt ProviderType) *Response {
	return &Response{
		Cue:          p.Cue,
		Intensity:    p.Intensity,
		Note:         p.Note,
		Display:      p.Display,
		Caption:      p.Caption,
		Tags:         p.Tags,
		ProviderType: pt,
	}
}

// findJSONStart finds the start of a JSON object in text.
func findJSONStart(text string) int {
	for i, c := range text {
		if c == '{' {
			return i
		}
	}
	return -1
}

// findJSONEnd finds the matching closing brace.
func findJSONEnd(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
