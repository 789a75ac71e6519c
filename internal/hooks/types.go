package hooks

import "time"

// EventType represents the type of Claude Code hook event
type EventType string

// Event types feelsy captures. Other hook events exist but carry nothing
// the emotion pipeline can use.
const (
	PostToolUse  EventType = "PostToolUse"
	Stop         EventType = "Stop"
	SessionStart EventType = "SessionStart"
	SessionEnd   EventType = "SessionEnd"
)

// ParseEventType maps a capture subcommand argument to an EventType.
func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "posttooluse", "post-tool-use", string(PostToolUse):
		return PostToolUse, true
	case "stop", string(Stop):
		return Stop, true
	case "sessionstart", "session-start", string(SessionStart):
		return SessionStart, true
	case "sessionend", "session-end", string(SessionEnd):
		return SessionEnd, true
	default:
		return "", false
	}
}

// CommonInput contains fields common to all hook events
type CommonInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
}

// PostToolUseInput is the input for PostToolUse hooks
type PostToolUseInput struct {
	CommonInput
	ToolName     string         `json:"tool_name"`
	ToolInput    map[string]any `json:"tool_input"`
	ToolResponse any            `json:"tool_response"`
	ToolUseID    string         `json:"tool_use_id"`
}

// StopInput is the input for Stop hooks
type StopInput struct {
	CommonInput
	StopHookActive bool `json:"stop_hook_active"`
}

// SessionStartInput is the input for SessionStart hooks
type SessionStartInput struct {
	CommonInput
	Source string `json:"source"` // startup, resume, clear, compact
}

// SessionEndInput is the input for SessionEnd hooks
type SessionEndInput struct {
	CommonInput
	Reason string `json:"reason"` // clear, logout, prompt_input_exit, other
}

// FeedEntry is one line of the feed file the capture hook appends and the
// daemon tails. It is the wire format between the two processes, so field
// names are stable.
type FeedEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	EventType    EventType `json:"event_type"`
	SessionID    string    `json:"session_id"`
	ToolName     string    `json:"tool_name,omitempty"`
	ToolInput    string    `json:"tool_input,omitempty"`
	ToolOutput   string    `json:"tool_output,omitempty"`
	ToolSuccess  *bool     `json:"tool_success,omitempty"`
	Thinking     string    `json:"thinking,omitempty"`
	ContextUsage *float64  `json:"context_usage,omitempty"`
	ProjectDir   string    `json:"project_dir,omitempty"`
}

// HookResponse is what capture writes back to Claude Code on stdout.
// Feelsy only observes; it never blocks or modifies anything, so the
// response is always empty-and-continue.
type HookResponse struct {
	Continue bool `json:"continue"`
}
