package emotion

import (
	"fmt"
	"sync"
	"testing"
)

func TestTrackerSequenceMatch(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	if m := tr.AddEmotion("s1", "frustrated", "e1"); m != nil {
		t.Fatalf("unexpected match after one label: %+v", m)
	}
	if m := tr.AddEmotion("s1", "frustrated", "e2"); m != nil {
		t.Fatalf("unexpected match after two labels: %+v", m)
	}

	m := tr.AddEmotion("s1", "eureka", "e3")
	if m == nil {
		t.Fatal("expected comeback-arc match, got nil")
	}
	if m.Name != "comeback-arc" {
		t.Errorf("got sequence %q, want comeback-arc", m.Name)
	}
	if m.Virality != 85 {
		t.Errorf("got virality %d, want 85", m.Virality)
	}
	if len(m.EventIDs) != 3 || m.EventIDs[0] != "e1" || m.EventIDs[2] != "e3" {
		t.Errorf("got event IDs %v, want [e1 e2 e3]", m.EventIDs)
	}

	// Matched entries are consumed; the history is empty again.
	if stats := tr.Stats("s1"); stats.Total != 0 {
		t.Errorf("got %d entries after consumption, want 0", stats.Total)
	}
}

func TestTrackerConsumptionPreventsReplay(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	tr.AddEmotion("s1", "frustrated", "e1")
	tr.AddEmotion("s1", "frustrated", "e2")
	if m := tr.AddEmotion("s1", "eureka", "e3"); m == nil {
		t.Fatal("expected first match")
	}

	// The consumed frustrations cannot seed a second match.
	if m := tr.AddEmotion("s1", "eureka", "e4"); m != nil {
		t.Errorf("unexpected match from consumed history: %+v", m)
	}

	// A fresh run of the pattern fires again.
	tr.AddEmotion("s1", "frustrated", "e5")
	tr.AddEmotion("s1", "frustrated", "e6")
	if m := tr.AddEmotion("s1", "eureka", "e7"); m == nil {
		t.Error("expected second match from fresh entries")
	}
}

func TestTrackerCategorySteps(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	// confused and debugging are struggle; victorious is triumph. No
	// exact sequence covers this run, so the category-level redemption
	// pattern fires.
	tr.AddEmotion("s1", "confused", "e1")
	tr.AddEmotion("s1", "debugging", "e2")
	m := tr.AddEmotion("s1", "victorious", "e3")
	if m == nil {
		t.Fatal("expected redemption match, got nil")
	}
	if m.Name != "redemption" {
		t.Errorf("got sequence %q, want redemption", m.Name)
	}
}

func TestTrackerExactSequenceWinsOverCategory(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	// frustrated,frustrated,eureka satisfies both comeback-arc (exact)
	// and redemption (categories); catalog order picks comeback-arc.
	tr.AddEmotion("s1", "frustrated", "e1")
	tr.AddEmotion("s1", "frustrated", "e2")
	m := tr.AddEmotion("s1", "eureka", "e3")
	if m == nil || m.Name != "comeback-arc" {
		t.Fatalf("got %+v, want comeback-arc", m)
	}
}

func TestTrackerEviction(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	// Alternating labels never complete a sequence.
	for i := 0; i < 25; i++ {
		label := "curious"
		if i%2 == 1 {
			label = "confused"
		}
		if m := tr.AddEmotion("s1", label, fmt.Sprintf("e%d", i)); m != nil {
			t.Fatalf("unexpected match at %d: %+v", i, m)
		}
	}

	stats := tr.Stats("s1")
	if stats.Total != DefaultHistoryCapacity {
		t.Errorf("got %d entries, want %d", stats.Total, DefaultHistoryCapacity)
	}
}

func TestTrackerStats(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	t.Run("unknown session", func(t *testing.T) {
		stats := tr.Stats("nope")
		if stats.Total != 0 || stats.Dominant != "" || stats.Volatility != 0 {
			t.Errorf("got %+v, want zero stats", stats)
		}
		if stats.Counts == nil {
			t.Error("Counts should be non-nil")
		}
	})

	t.Run("single entry", func(t *testing.T) {
		tr.AddEmotion("single", "curious", "e1")
		stats := tr.Stats("single")
		if stats.Total != 1 || stats.Volatility != 0 || stats.Dominant != "curious" {
			t.Errorf("got %+v", stats)
		}
	})

	t.Run("steady run has zero volatility", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			tr.AddEmotion("steady", "curious", fmt.Sprintf("e%d", i))
		}
		stats := tr.Stats("steady")
		if stats.Volatility != 0 {
			t.Errorf("got volatility %v, want 0", stats.Volatility)
		}
		if stats.Counts["curious"] != 5 {
			t.Errorf("got count %d, want 5", stats.Counts["curious"])
		}
	})

	t.Run("alternating run has volatility 1", func(t *testing.T) {
		for i := 0; i < 6; i++ {
			label := "curious"
			if i%2 == 1 {
				label = "confused"
			}
			tr.AddEmotion("swing", label, fmt.Sprintf("e%d", i))
		}
		stats := tr.Stats("swing")
		if stats.Volatility != 1.0 {
			t.Errorf("got volatility %v, want 1.0", stats.Volatility)
		}
	})

	t.Run("dominant tie keeps first seen", func(t *testing.T) {
		tr.AddEmotion("tie", "curious", "e1")
		tr.AddEmotion("tie", "confused", "e2")
		stats := tr.Stats("tie")
		if stats.Dominant != "curious" {
			t.Errorf("got dominant %q, want curious", stats.Dominant)
		}
	})
}

func TestTrackerClear(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	tr.AddEmotion("s1", "frustrated", "e1")
	tr.AddEmotion("s1", "frustrated", "e2")
	tr.Clear("s1")

	if stats := tr.Stats("s1"); stats.Total != 0 {
		t.Fatalf("got %d entries after clear, want 0", stats.Total)
	}

	// Cleared history cannot complete a pattern started before the clear.
	if m := tr.AddEmotion("s1", "eureka", "e3"); m != nil {
		t.Errorf("unexpected match after clear: %+v", m)
	}

	// Clearing an unknown session is a no-op.
	tr.Clear("never-seen")
}

func TestTrackerSessionIsolation(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	tr.AddEmotion("a", "frustrated", "a1")
	tr.AddEmotion("b", "frustrated", "b1")
	tr.AddEmotion("a", "frustrated", "a2")

	// Session b only has one frustration; session a's pair must not
	// bleed into it.
	if m := tr.AddEmotion("b", "eureka", "b2"); m != nil {
		t.Errorf("unexpected cross-session match: %+v", m)
	}
	if m := tr.AddEmotion("a", "eureka", "a3"); m == nil {
		t.Error("expected match in session a")
	}
}

func TestTrackerConcurrentSessions(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session := fmt.Sprintf("s%d", n)
			for j := 0; j < 50; j++ {
				tr.AddEmotion(session, "curious", fmt.Sprintf("e%d", j))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		stats := tr.Stats(fmt.Sprintf("s%d", i))
		if stats.Total != DefaultHistoryCapacity {
			t.Errorf("session s%d: got %d entries, want %d", i, stats.Total, DefaultHistoryCapacity)
		}
	}
}

func TestTrackerCustomCapacity(t *testing.T) {
	tr := NewTracker(DefaultCatalog(), 3)

	for i := 0; i < 10; i++ {
		label := "curious"
		if i%2 == 1 {
			label = "confused"
		}
		tr.AddEmotion("s1", label, fmt.Sprintf("e%d", i))
	}

	if stats := tr.Stats("s1"); stats.Total != 3 {
		t.Errorf("got %d entries, want 3", stats.Total)
	}
}
