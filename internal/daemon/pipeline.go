package daemon

import (
	"context"

	"github.com/google/uuid"

	"github.com/ihavespoons/feelsy/internal/emotion"
	"github.com/ihavespoons/feelsy/internal/gif"
	"github.com/ihavespoons/feelsy/internal/hooks"
	"github.com/ihavespoons/feelsy/internal/logger"
	"github.com/ihavespoons/feelsy/internal/monologue"
	"github.com/ihavespoons/feelsy/internal/store"
)

// monologueMaxLen caps how much of a real thinking block is shown as the
// monologue before falling back to its leading slice.
const monologueMaxLen = 280

// Pipeline turns feed entries into stored, broadcast thoughts. Each tool
// event is classified, given a monologue and a GIF, persisted, and pushed
// to SSE clients. Session lifecycle entries maintain session rows and
// reset per-session engine state.
type Pipeline struct {
	classifier  *emotion.Classifier
	generator   *monologue.Generator
	gifs        *gif.Client
	store       store.Store
	broadcaster *SSEBroadcaster
}

// NewPipeline creates a processing pipeline
func NewPipeline(classifier *emotion.Classifier, generator *monologue.Generator, gifs *gif.Client, st store.Store, broadcaster *SSEBroadcaster) *Pipeline {
	return &Pipeline{
		classifier:  classifier,
		generator:   generator,
		gifs:        gifs,
		store:       st,
		broadcaster: broadcaster,
	}
}

// Process handles one feed entry
func (p *Pipeline) Process(ctx context.Context, entry *hooks.FeedEntry) {
	switch entry.EventType {
	case hooks.SessionStart:
		p.handleSessionStart(entry)
	case hooks.SessionEnd:
		p.handleSessionEnd(entry)
	case hooks.PostToolUse, hooks.Stop:
		p.handleToolEvent(ctx, entry)
	default:
		logger.Debug().Str("event_type", string(entry.EventType)).Msg("Ignoring feed entry")
	}
}

func (p *Pipeline) handleSessionStart(entry *hooks.FeedEntry) {
	p.classifier.Tracker().Clear(entry.SessionID)
	p.generator.Reset()

	if err := p.store.StartSession(entry.SessionID, entry.ProjectDir); err != nil {
		logger.Warn().Err(err).Str("session_id", entry.SessionID).Msg("Failed to start session")
		return
	}

	logger.Info().Str("session_id", entry.SessionID).Msg("Session started")
	p.broadcastStats()
}

func (p *Pipeline) handleSessionEnd(entry *hooks.FeedEntry) {
	stats := p.classifier.Tracker().Stats(entry.SessionID)
	p.classifier.Tracker().Clear(entry.SessionID)

	if err := p.store.EndSession(entry.SessionID, stats.Dominant); err != nil {
		logger.Debug().Err(err).Str("session_id", entry.SessionID).Msg("Failed to end session")
		return
	}

	logger.Info().
		Str("session_id", entry.SessionID).
		Str("dominant", stats.Dominant).
		Msg("Session ended")
	p.broadcastStats()
}

func (p *Pipeline) handleToolEvent(ctx context.Context, entry *hooks.FeedEntry) {
	p.ensureSession(entry)

	ev := &emotion.Event{
		ID:         uuid.NewString(),
		SessionID:  entry.SessionID,
		ToolName:   entry.ToolName,
		ToolInput:  entry.ToolInput,
		ToolOutput: entry.ToolOutput,
		Success:    entry.ToolSuccess,
		Thinking:   entry.Thinking,
	}

	result := p.classifier.Classify(ctx, ev)

	// Real reasoning beats a canned line when the transcript had one
	mono := truncateMonologue(entry.Thinking)
	if mono == "" {
		mono = p.generator.Generate(monologue.Input{
			ToolName:   entry.ToolName,
			ToolOutput: entry.ToolOutput,
			Success:    entry.ToolSuccess,
		})
	}

	observation, _ := p.generator.Observation(entry.ToolName)

	usage := entry.ContextUsage
	if usage == nil {
		est := p.generator.ContextEstimate(len(entry.ToolOutput))
		usage = &est
	}

	g := p.gifs.Lookup(ctx, result.Cue)

	thought := &store.Thought{
		EventID:      ev.ID,
		SessionID:    entry.SessionID,
		Timestamp:    entry.Timestamp,
		ToolName:     entry.ToolName,
		ToolInput:    entry.ToolInput,
		ToolOutput:   entry.ToolOutput,
		ToolSuccess:  entry.ToolSuccess,
		Thinking:     entry.Thinking,
		Monologue:    mono,
		Emotion:      result.Label,
		Note:         result.Note,
		Observation:  observation,
		ContextUsage: usage,
		Cue:          result.Cue,
		GIFURL:       g.URL,
		GIFTitle:     g.Title,
		GIFID:        g.ID,
		Intensity:    result.Intensity,
		Display:      string(result.Display),
		Viral:        result.Sequence != nil,
	}

	if err := p.store.InsertThought(thought); err != nil {
		logger.Error().Err(err).Str("session_id", entry.SessionID).Msg("Failed to store thought")
		return
	}

	logger.Debug().
		Str("session_id", entry.SessionID).
		Str("emotion", result.Label).
		Int("intensity", result.Intensity).
		Str("mode", string(result.Mode)).
		Msg("Thought processed")

	p.broadcaster.Broadcast(SSEEvent{Type: SSEThought, Data: thought})

	if result.Sequence != nil {
		p.recordViralMoment(entry.SessionID, result.Sequence)
	}

	p.broadcastStats()
}

func (p *Pipeline) recordViralMoment(sessionID string, match *emotion.SequenceMatch) {
	moment := &store.ViralMoment{
		SessionID:    sessionID,
		Timestamp:    match.Timestamp,
		SequenceName: match.Name,
		EventIDs:     match.EventIDs,
		Virality:     match.Virality,
	}

	if err := p.store.InsertViralMoment(moment); err != nil {
		logger.Error().Err(err).Str("sequence", match.Name).Msg("Failed to store viral moment")
		return
	}

	logger.Info().
		Str("session_id", sessionID).
		Str("sequence", match.Name).
		Int("virality", match.Virality).
		Msg("Viral moment detected")

	p.broadcaster.Broadcast(SSEEvent{Type: SSEViral, Data: moment})
}

// ensureSession creates a session row for sessions whose SessionStart was
// never captured, so thought counters have somewhere to land.
func (p *Pipeline) ensureSession(entry *hooks.FeedEntry) {
	if _, err := p.store.GetSession(entry.SessionID); err == nil {
		return
	}
	if err := p.store.StartSession(entry.SessionID, entry.ProjectDir); err != nil {
		logger.Warn().Err(err).Str("session_id", entry.SessionID).Msg("Failed to create session")
	}
}

func (p *Pipeline) broadcastStats() {
	stats, err := p.store.Stats()
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to read stats for broadcast")
		return
	}
	p.broadcaster.Broadcast(SSEEvent{Type: SSEStats, Data: stats})
}

func truncateMonologue(s string) string {
	if len(s) <= monologueMaxLen {
		return s
	}
	return s[:monologueMaxLen] + "..."
}
