package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ihavespoons/feelsy/internal/hooks"
	"github.com/ihavespoons/feelsy/internal/logger"
)

// Tailer follows the feed file the capture hook appends to and hands each
// complete JSONL entry to its handler. It tracks its byte offset so a poll
// only reads what is new, and resets when the file is truncated or
// replaced. Entries written before the tailer started are skipped.
type Tailer struct {
	path     string
	interval time.Duration
	handler  func(*hooks.FeedEntry)

	offset  int64
	nudgeCh chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewTailer creates a tailer for the given feed file
func NewTailer(path string, interval time.Duration, handler func(*hooks.FeedEntry)) *Tailer {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Tailer{
		path:     path,
		interval: interval,
		handler:  handler,
		nudgeCh:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling the feed file for new entries
func (t *Tailer) Start(ctx context.Context) {
	// Start at the current end of the file so a restart does not replay
	// the whole backlog
	if fi, err := os.Stat(t.path); err == nil {
		t.offset = fi.Size()
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx)
	}()
}

// Stop stops the tailer and waits for the poll loop to exit
func (t *Tailer) Stop() {
	close(t.stopCh)
	t.wg.Wait()
}

// Nudge asks the tailer to poll immediately instead of waiting for the
// next tick. Used by the ingest endpoint for low-latency pickup.
func (t *Tailer) Nudge() {
	select {
	case t.nudgeCh <- struct{}{}:
	default:
	}
}

func (t *Tailer) run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-t.nudgeCh:
			t.poll()
		case <-ticker.C:
			t.poll()
		}
	}
}

// poll reads any complete lines appended since the last poll. A trailing
// partial line is left for the next poll so a mid-write entry is never
// half-parsed.
func (t *Tailer) poll() {
	fi, err := os.Stat(t.path)
	if err != nil {
		// Feed file may not exist until the first capture
		return
	}

	size := fi.Size()
	if size < t.offset {
		logger.Debug().Str("path", t.path).Msg("Feed file truncated, resetting position")
		t.offset = 0
	}
	if size == t.offset {
		return
	}

	f, err := os.Open(t.path)
	if err != nil {
		logger.Warn().Err(err).Str("path", t.path).Msg("Failed to open feed file")
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		logger.Warn().Err(err).Msg("Failed to seek feed file")
		return
	}

	reader := bufio.NewReaderSize(f, 1<<20)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// Incomplete trailing line: leave it for the next poll
			break
		}
		t.offset += int64(len(line))

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var entry hooks.FeedEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			logger.Warn().Err(err).Msg("Skipping malformed feed entry")
			continue
		}
		t.handler(&entry)
	}
}
