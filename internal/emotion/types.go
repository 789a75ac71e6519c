// Package emotion implements the rule-based emotion classifier and the
// per-session transition tracker that turns a stream of tool events into
// labeled, intensity-scored classifications and multi-step sequence
// matches ("viral moments").
package emotion

import (
	"context"
	"time"
)

// Mode selects how an event is classified.
type Mode string

// Classification modes.
const (
	ModeRule     Mode = "rule"
	ModeCreative Mode = "creative"
	ModeHybrid   Mode = "hybrid"
)

// ParseMode maps a config string to a Mode, defaulting to hybrid.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeRule, ModeCreative, ModeHybrid:
		return Mode(s)
	default:
		return ModeHybrid
	}
}

// DisplayMode tells the dashboard how to present a classification.
type DisplayMode string

// Display modes. Anything else coming back from a creative provider
// normalizes to DisplayNormal.
const (
	DisplayNormal     DisplayMode = "normal"
	DisplayFullscreen DisplayMode = "fullscreen"
	DisplaySplit      DisplayMode = "split"
	DisplaySequence   DisplayMode = "sequence"
	DisplayChaos      DisplayMode = "chaos"
)

// NormalizeDisplayMode validates a display directive, mapping unknown
// values to DisplayNormal. Never rejects.
func NormalizeDisplayMode(s string) DisplayMode {
	switch DisplayMode(s) {
	case DisplayNormal, DisplayFullscreen, DisplaySplit, DisplaySequence, DisplayChaos:
		return DisplayMode(s)
	default:
		return DisplayNormal
	}
}

// Synthetic labels used when no catalog rule matches.
const (
	LabelNeutral  = "neutral"
	LabelSuccess  = "success"
	LabelError    = "error"
	LabelCreative = "creative"
)

// Event is one tool execution as seen by the classifier. The engine does
// not persist events; it only reads them.
type Event struct {
	ID         string
	SessionID  string
	ToolName   string
	ToolInput  string
	ToolOutput string
	Success    *bool // nil = unknown
	Thinking   string
}

// RuleMatch is the outcome of the rule matcher for one event.
type RuleMatch struct {
	Label      string
	Cue        string
	Intensity  int
	Confidence float64
	Rare       bool
	Tags       []string
}

// CreativeResult is what a creative provider returns for one event. The
// engine clamps the intensity and validates the display directive; the
// provider's values are never trusted as-is.
type CreativeResult struct {
	Cue       string
	Intensity int
	Note      string
	Display   string
	Caption   string
	Tags      []string
}

// CreativeClassifier is the boundary to the external creative service.
// Implementations must treat every failure mode as an error return; the
// classifier maps all errors to a silent rule-based fallback.
type CreativeClassifier interface {
	Classify(ctx context.Context, ev *Event) (*CreativeResult, error)
}

// Classification is the normalized per-event result. Invariants:
// Intensity in [1,10], Confidence in [0,1], Display one of the fixed set.
type Classification struct {
	Label      string      `json:"label"`
	Cue        string      `json:"cue"`
	Intensity  int         `json:"intensity"`
	Confidence float64     `json:"confidence"`
	Display    DisplayMode `json:"display"`
	Rare       bool        `json:"rare"`
	Tags       []string    `json:"tags,omitempty"`
	Mode       Mode        `json:"mode"`
	Note       string      `json:"note,omitempty"`
	Caption    string      `json:"caption,omitempty"`

	// Sequence is set when this event completed a catalog sequence.
	Sequence *SequenceMatch `json:"sequence,omitempty"`
}

// SequenceMatch reports a completed multi-step sequence. The consumed
// history entries are removed from the session history when it is emitted.
type SequenceMatch struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Virality    int       `json:"virality"`
	EventIDs    []string  `json:"event_ids"`
	Timestamp   time.Time `json:"timestamp"`
}

// Stats summarizes a session's current (non-consumed) history.
type Stats struct {
	Total      int            `json:"total"`
	Counts     map[string]int `json:"counts"`
	Volatility float64        `json:"volatility"`
	Dominant   string         `json:"dominant"`
}

func clampIntensity(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func capAt10(n int) int {
	if n > 10 {
		return 10
	}
	return n
}
