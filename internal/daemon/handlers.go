package daemon

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ihavespoons/feelsy/internal/emotion"
	"github.com/ihavespoons/feelsy/internal/store"
)

// Handlers contains the HTTP handlers for the daemon API
type Handlers struct {
	store       store.Store
	catalog     *emotion.Catalog
	broadcaster *SSEBroadcaster
	tailer      *Tailer
	startedAt   time.Time
	version     string
}

// NewHandlers creates a new handlers instance
func NewHandlers(st store.Store, catalog *emotion.Catalog, broadcaster *SSEBroadcaster, tailer *Tailer, version string) *Handlers {
	return &Handlers{
		store:       st,
		catalog:     catalog,
		broadcaster: broadcaster,
		tailer:      tailer,
		startedAt:   time.Now(),
		version:     version,
	}
}

// Health handles the health check endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		StartedAt: h.startedAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sessions handles the sessions list endpoint
func (h *Handlers) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, SessionResponse{
			ID:              s.ID,
			StartedAt:       s.StartedAt,
			EndedAt:         s.EndedAt,
			ProjectDir:      s.ProjectDir,
			TotalThoughts:   s.TotalThoughts,
			DominantEmotion: s.DominantEmotion,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Thoughts handles the thoughts list endpoint. Results are in
// chronological order; session_id and limit narrow the query.
func (h *Handlers) Thoughts(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	var (
		thoughts []*store.Thought
		err      error
	)
	if sessionID != "" {
		thoughts, err = h.store.SessionThoughts(sessionID, limit)
	} else {
		thoughts, err = h.store.RecentThoughts(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, thoughts)
}

// Rules handles the rule catalog endpoint
func (h *Handlers) Rules(w http.ResponseWriter, r *http.Request) {
	rules := h.catalog.Rules()
	resp := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, RuleResponse{
			Name:      rule.Name,
			Intensity: rule.Intensity,
			Rare:      rule.Rare,
			Cue:       rule.Cue,
			Tags:      rule.Tags,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sequences handles the sequence catalog endpoint
func (h *Handlers) Sequences(w http.ResponseWriter, r *http.Request) {
	sequences := h.catalog.Sequences()
	resp := make([]SequenceResponse, 0, len(sequences))
	for _, seq := range sequences {
		resp = append(resp, SequenceResponse{
			Name:        seq.Name,
			Steps:       seq.Steps,
			Virality:    seq.Virality,
			Description: seq.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats handles the aggregate statistics endpoint
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := StatsResponse{
		TotalThoughts: stats.TotalThoughts,
		TotalSessions: stats.TotalSessions,
		TotalViral:    stats.TotalViral,
		EmotionCounts: stats.EmotionCounts,
		Clients:       h.broadcaster.ClientCount(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// Purge handles the purge endpoint, deleting all stored data
func (h *Handlers) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Purge(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.broadcaster.Broadcast(SSEEvent{
		Type: SSEPurge,
		Data: map[string]any{"time": time.Now().UTC()},
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

// Ingest handles the capture hook's wake-up call. The feed file is the
// source of truth; the POST only nudges the tailer so new entries get
// picked up without waiting for the next poll tick.
func (h *Handlers) Ingest(w http.ResponseWriter, r *http.Request) {
	h.tailer.Nudge()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
