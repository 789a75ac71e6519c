package daemon

import (
	"time"
)

// SessionResponse represents a session in API responses
type SessionResponse struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	ProjectDir      string     `json:"project_dir,omitempty"`
	TotalThoughts   int        `json:"total_thoughts"`
	DominantEmotion string     `json:"dominant_emotion,omitempty"`
}

// RuleResponse represents a catalog rule in API responses
type RuleResponse struct {
	Name      string   `json:"name"`
	Intensity int      `json:"intensity"`
	Rare      bool     `json:"rare"`
	Cue       string   `json:"cue"`
	Tags      []string `json:"tags,omitempty"`
}

// SequenceResponse represents a catalog sequence in API responses
type SequenceResponse struct {
	Name        string   `json:"name"`
	Steps       []string `json:"steps"`
	Virality    int      `json:"virality"`
	Description string   `json:"description,omitempty"`
}

// StatsResponse represents aggregate statistics
type StatsResponse struct {
	TotalThoughts int            `json:"total_thoughts"`
	TotalSessions int            `json:"total_sessions"`
	TotalViral    int            `json:"total_viral"`
	EmotionCounts map[string]int `json:"emotion_counts"`
	Clients       int            `json:"clients"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
}

// SSEEvent represents a server-sent event
type SSEEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SSE event types
const (
	SSEThought   = "thought"
	SSEStats     = "stats"
	SSEViral     = "viral"
	SSEPurge     = "purge"
	SSEHeartbeat = "heartbeat"
)
