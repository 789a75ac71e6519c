package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Capture limits. Tool output is truncated before it enters the feed so a
// single giant Bash result cannot bloat the feed file or the database.
const (
	maxToolInputLen  = 200
	maxToolOutputLen = 1000
)

// errorIndicators flag a tool result as a probable failure when the hook
// payload carries no explicit success field.
var errorIndicators = []string{
	"error", "failed", "failure", "exception", "traceback",
	"cannot", "unable to", "does not exist", "not found",
	"permission denied", "access denied", "invalid",
	"syntax error", "command not found",
}

// DetectToolSuccess heuristically decides whether a tool call succeeded.
// Returns nil (unknown) for an empty result: no evidence either way.
func DetectToolSuccess(toolResult string) *bool {
	if strings.TrimSpace(toolResult) == "" {
		return nil
	}

	lower := strings.ToLower(toolResult)
	for _, indicator := range errorIndicators {
		if strings.Contains(lower, indicator) {
			f := false
			return &f
		}
	}

	t := true
	return &t
}

// SummarizeToolInput reduces a structured tool input to a short string for
// the feed. Known tools have one field that carries the intent; everything
// else gets its JSON form, truncated.
func SummarizeToolInput(toolInput map[string]any) string {
	if toolInput == nil {
		return ""
	}

	for _, key := range []string{"command", "file_path", "pattern", "url", "query"} {
		if v, ok := toolInput[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return truncate(s, maxToolInputLen)
			}
		}
	}

	raw, err := json.Marshal(toolInput)
	if err != nil {
		return ""
	}
	return truncate(string(raw), maxToolInputLen)
}

// FlattenToolResponse converts a tool_response payload (string, map, or
// list depending on the tool) to plain text for classification.
func FlattenToolResponse(resp any) string {
	switch v := resp.(type) {
	case nil:
		return ""
	case string:
		return truncate(v, maxToolOutputLen)
	case map[string]any:
		var sb strings.Builder
		for key, value := range v {
			fmt.Fprintf(&sb, "%s: %v\n", key, value)
		}
		return truncate(sb.String(), maxToolOutputLen)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return truncate(string(raw), maxToolOutputLen)
	}
}

// NewPostToolUseEntry builds the feed entry for a PostToolUse hook.
// Thinking and context usage come from the transcript when available.
func NewPostToolUseEntry(input *PostToolUseInput) *FeedEntry {
	output := FlattenToolResponse(input.ToolResponse)

	entry := &FeedEntry{
		Timestamp:   time.Now(),
		EventType:   PostToolUse,
		SessionID:   input.SessionID,
		ToolName:    input.ToolName,
		ToolInput:   SummarizeToolInput(input.ToolInput),
		ToolOutput:  output,
		ToolSuccess: DetectToolSuccess(output),
	}

	if input.TranscriptPath != "" {
		if thinking, err := LatestThinking(input.TranscriptPath); err == nil && thinking != "" {
			entry.Thinking = thinking
		}
		if usage, err := ContextUsage(input.TranscriptPath); err == nil {
			entry.ContextUsage = &usage
		}
	}

	return entry
}

// NewStopEntry builds the feed entry for a Stop hook.
func NewStopEntry(input *StopInput) *FeedEntry {
	entry := &FeedEntry{
		Timestamp: time.Now(),
		EventType: Stop,
		SessionID: input.SessionID,
	}

	if input.TranscriptPath != "" {
		if thinking, err := LatestThinking(input.TranscriptPath); err == nil && thinking != "" {
			entry.Thinking = thinking
		}
	}

	return entry
}

// NewSessionStartEntry builds the feed entry for a SessionStart hook.
func NewSessionStartEntry(input *SessionStartInput) *FeedEntry {
	return &FeedEntry{
		Timestamp:  time.Now(),
		EventType:  SessionStart,
		SessionID:  input.SessionID,
		ProjectDir: input.Cwd,
	}
}

// NewSessionEndEntry builds the feed entry for a SessionEnd hook.
func NewSessionEndEntry(input *SessionEndInput) *FeedEntry {
	return &FeedEntry{
		Timestamp: time.Now(),
		EventType: SessionEnd,
		SessionID: input.SessionID,
	}
}

// WriteFeedEntry appends one JSONL entry to the feed file, creating the
// directory on first use.
func WriteFeedEntry(path string, entry *FeedEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create feed directory: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode feed entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open feed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write feed entry: %w", err)
	}

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
