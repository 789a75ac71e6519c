package store

import "time"

// Thought is one classified event as persisted for the dashboard.
type Thought struct {
	ID           int64     `json:"id"`
	EventID      string    `json:"event_id"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
	ToolName     string    `json:"tool_name"`
	ToolInput    string    `json:"tool_input"`
	ToolOutput   string    `json:"tool_output"`
	ToolSuccess  *bool     `json:"tool_success,omitempty"`
	Thinking     string    `json:"thinking,omitempty"`
	Monologue    string    `json:"monologue"`
	Emotion      string    `json:"emotion"`
	Note         string    `json:"note,omitempty"`
	Observation  string    `json:"observation,omitempty"`
	ContextUsage *float64  `json:"context_usage,omitempty"`
	Cue          string    `json:"cue"`
	GIFURL       string    `json:"gif_url"`
	GIFTitle     string    `json:"gif_title"`
	GIFID        string    `json:"gif_id"`
	Intensity    int       `json:"intensity"`
	Display      string    `json:"display"`
	Viral        bool      `json:"viral"`
}

// Session is one recorded agent session.
type Session struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	ProjectDir      string     `json:"project_dir,omitempty"`
	TotalThoughts   int        `json:"total_thoughts"`
	DominantEmotion string     `json:"dominant_emotion,omitempty"`
}

// ViralMoment is one completed emotion sequence.
type ViralMoment struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
	SequenceName string    `json:"sequence_name"`
	EventIDs     []string  `json:"event_ids"`
	Virality     int       `json:"virality"`
}

// Stats aggregates stored data for the stats endpoint.
type Stats struct {
	TotalThoughts int            `json:"total_thoughts"`
	TotalSessions int            `json:"total_sessions"`
	TotalViral    int            `json:"total_viral"`
	EmotionCounts map[string]int `json:"emotion_counts"`
}
