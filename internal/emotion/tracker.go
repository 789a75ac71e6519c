package emotion

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds each session's label history.
const DefaultHistoryCapacity = 20

type historyEntry struct {
	Label   string
	EventID string
	At      time.Time
}

// sessionHistory is an append/evict/consume queue of recent labels. Each
// session gets its own lock so concurrent sessions never contend.
type sessionHistory struct {
	mu      sync.Mutex
	entries []historyEntry
}

// Tracker maintains bounded per-session label histories and matches the
// tail of each history against the sequence catalog. Matching consumes:
// once a sequence fires, its entries are gone and cannot fire again.
//
// Calls for the same session must arrive in event order; the tracker does
// not reorder. Calls for different sessions are fully concurrent.
type Tracker struct {
	catalog  *Catalog
	capacity int

	mu       sync.RWMutex
	sessions map[string]*sessionHistory
}

// NewTracker creates a tracker over the given catalog. A non-positive
// capacity selects DefaultHistoryCapacity.
func NewTracker(catalog *Catalog, capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Tracker{
		catalog:  catalog,
		capacity: capacity,
		sessions: make(map[string]*sessionHistory),
	}
}

// AddEmotion appends a label to the session's history (creating the
// session on first use, evicting the oldest entry past capacity) and then
// tries every catalog sequence against the history tail. The first
// sequence whose full pattern matches wins; its entries are removed and
// the match returned. Returns nil when nothing matched.
func (t *Tracker) AddEmotion(sessionID, label, eventID string) *SequenceMatch {
	s := t.session(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, historyEntry{Label: label, EventID: eventID, At: time.Now()})
	if len(s.entries) > t.capacity {
		s.entries = s.entries[1:]
	}

	for _, seq := range t.catalog.sequences {
		n := len(seq.Steps)
		if n == 0 || len(s.entries) < n {
			continue
		}

		tail := s.entries[len(s.entries)-n:]
		matched := true
		for i, step := range seq.Steps {
			if !t.catalog.stepMatches(step, tail[i].Label) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		ids := make([]string, n)
		for i, e := range tail {
			ids[i] = e.EventID
		}

		// Consume: the matched entries are retired for good.
		s.entries = s.entries[:len(s.entries)-n]

		return &SequenceMatch{
			Name:        seq.Name,
			Description: seq.Description,
			Virality:    seq.Virality,
			EventIDs:    ids,
			Timestamp:   time.Now(),
		}
	}

	return nil
}

// Stats reports label frequencies, volatility, and the dominant label for
// the session's current history. Dominant ties break toward the label
// seen first.
func (t *Tracker) Stats(sessionID string) Stats {
	stats := Stats{Counts: make(map[string]int)}

	t.mu.RLock()
	s, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return stats
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats.Total = len(s.entries)

	var order []string
	changes := 0
	for i, e := range s.entries {
		if _, seen := stats.Counts[e.Label]; !seen {
			order = append(order, e.Label)
		}
		stats.Counts[e.Label]++
		if i > 0 && s.entries[i-1].Label != e.Label {
			changes++
		}
	}

	if len(s.entries) > 1 {
		stats.Volatility = float64(changes) / float64(len(s.entries)-1)
	}

	best := -1
	for _, label := range order {
		if stats.Counts[label] > best {
			best = stats.Counts[label]
			stats.Dominant = label
		}
	}

	return stats
}

// Clear drops the session's history entirely. Callers invoke this on
// session start so a reused tracker never leaks pattern state across
// sessions. No-op for unknown sessions.
func (t *Tracker) Clear(sessionID string) {
	t.mu.Lock()
	delete(t.sessions, sessionID)
	t.mu.Unlock()
}

func (t *Tracker) session(id string) *sessionHistory {
	t.mu.RLock()
	s, ok := t.sessions[id]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[id]; ok {
		return s
	}
	s = &sessionHistory{}
	t.sessions[id] = s
	return s
}
