package daemon

import (
	"testing"
)

func TestSSEBroadcasterSubscribeAndBroadcast(t *testing.T) {
	b := NewSSEBroadcaster()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	if b.ClientCount() != 2 {
		t.Fatalf("got %d clients, want 2", b.ClientCount())
	}

	b.Broadcast(SSEEvent{Type: SSEThought, Data: "hello"})

	for i, ch := range []chan SSEEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != SSEThought {
				t.Errorf("client %d: got type %q, want thought", i, ev.Type)
			}
		default:
			t.Errorf("client %d: no event received", i)
		}
	}
}

func TestSSEBroadcasterUnsubscribe(t *testing.T) {
	b := NewSSEBroadcaster()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if b.ClientCount() != 0 {
		t.Errorf("got %d clients, want 0", b.ClientCount())
	}

	// Channel is closed after unsubscribe
	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}

	// Double unsubscribe must not panic
	b.Unsubscribe(ch)
}

func TestSSEBroadcasterFullChannelDoesNotBlock(t *testing.T) {
	b := NewSSEBroadcaster()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Overfill the 100-slot buffer; Broadcast must drop, not block
	for i := 0; i < 150; i++ {
		b.Broadcast(SSEEvent{Type: SSEStats, Data: nil})
	}

	if len(ch) != 100 {
		t.Errorf("got %d buffered events, want 100", len(ch))
	}
}
