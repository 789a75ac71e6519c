package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ihavespoons/feelsy/internal/emotion"
	"github.com/ihavespoons/feelsy/internal/hooks"
	"github.com/ihavespoons/feelsy/internal/store"
)

func newTestHandlers(t *testing.T) (*Handlers, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "feelsy.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	broadcaster := NewSSEBroadcaster()
	tailer := NewTailer(filepath.Join(t.TempDir(), "feed.jsonl"), time.Second, func(*hooks.FeedEntry) {})
	return NewHandlers(st, emotion.DefaultCatalog(), broadcaster, tailer, "test"), st
}

func insertTestThought(t *testing.T, st *store.SQLiteStore, sessionID, emotionLabel string) {
	t.Helper()
	if err := st.StartSession(sessionID, ""); err != nil {
		t.Fatal(err)
	}
	err := st.InsertThought(&store.Thought{
		EventID:   sessionID + "-" + emotionLabel,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		ToolName:  "Bash",
		Monologue: "hm",
		Emotion:   emotionLabel,
		Cue:       "test cue",
		Intensity: 5,
		Display:   "normal",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHandlersHealth(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("got Status=%q, want \"ok\"", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("got Version=%q, want \"test\"", resp.Version)
	}
}

func TestHandlersSessions(t *testing.T) {
	h, st := newTestHandlers(t)
	insertTestThought(t, st, "s1", "curious")
	insertTestThought(t, st, "s2", "frustrated")

	rec := httptest.NewRecorder()
	h.Sessions(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	var resp []SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d sessions, want 2", len(resp))
	}
}

func TestHandlersThoughts(t *testing.T) {
	h, st := newTestHandlers(t)
	insertTestThought(t, st, "s1", "curious")
	insertTestThought(t, st, "s1", "frustrated")
	insertTestThought(t, st, "s2", "victorious")

	t.Run("all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Thoughts(rec, httptest.NewRequest(http.MethodGet, "/api/thoughts", nil))

		var resp []*store.Thought
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if len(resp) != 3 {
			t.Errorf("got %d thoughts, want 3", len(resp))
		}
	})

	t.Run("filtered by session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Thoughts(rec, httptest.NewRequest(http.MethodGet, "/api/thoughts?session_id=s1", nil))

		var resp []*store.Thought
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if len(resp) != 2 {
			t.Errorf("got %d thoughts, want 2", len(resp))
		}
	})

	t.Run("limited", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Thoughts(rec, httptest.NewRequest(http.MethodGet, "/api/thoughts?limit=1", nil))

		var resp []*store.Thought
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if len(resp) != 1 {
			t.Errorf("got %d thoughts, want 1", len(resp))
		}
	})
}

func TestHandlersRules(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.Rules(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	var resp []RuleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != len(emotion.DefaultCatalog().Rules()) {
		t.Errorf("got %d rules, want %d", len(resp), len(emotion.DefaultCatalog().Rules()))
	}
	for _, rule := range resp {
		if rule.Name == "" || rule.Cue == "" {
			t.Errorf("rule %+v missing name or cue", rule)
		}
	}
}

func TestHandlersSequences(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.Sequences(rec, httptest.NewRequest(http.MethodGet, "/api/sequences", nil))

	var resp []SequenceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != len(emotion.DefaultCatalog().Sequences()) {
		t.Errorf("got %d sequences, want %d", len(resp), len(emotion.DefaultCatalog().Sequences()))
	}
	for _, seq := range resp {
		if len(seq.Steps) < 2 {
			t.Errorf("sequence %q has %d steps, want at least 2", seq.Name, len(seq.Steps))
		}
	}
}

func TestHandlersStats(t *testing.T) {
	h, st := newTestHandlers(t)
	insertTestThought(t, st, "s1", "curious")
	insertTestThought(t, st, "s1", "curious")

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	var resp StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalThoughts != 2 {
		t.Errorf("got TotalThoughts=%d, want 2", resp.TotalThoughts)
	}
	if resp.TotalSessions != 1 {
		t.Errorf("got TotalSessions=%d, want 1", resp.TotalSessions)
	}
	if resp.EmotionCounts["curious"] != 2 {
		t.Errorf("got EmotionCounts[curious]=%d, want 2", resp.EmotionCounts["curious"])
	}
}

func TestHandlersPurge(t *testing.T) {
	h, st := newTestHandlers(t)
	insertTestThought(t, st, "s1", "curious")

	rec := httptest.NewRecorder()
	h.Purge(rec, httptest.NewRequest(http.MethodDelete, "/api/purge", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	stats, err := st.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalThoughts != 0 || stats.TotalSessions != 0 {
		t.Errorf("got %d thoughts, %d sessions after purge, want 0, 0", stats.TotalThoughts, stats.TotalSessions)
	}
}

func TestHandlersIngest(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("got status %d, want 202", rec.Code)
	}
}
