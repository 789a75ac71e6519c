package emotion

import "context"

const (
	// hybridEscalationThreshold is the rule confidence at or above which
	// hybrid mode skips the creative classifier entirely.
	hybridEscalationThreshold = 0.7

	creativeConfidence = 0.9
	hybridConfidence   = 0.85
)

// Classifier orchestrates rule matching, optional creative escalation,
// and sequence tracking into a single classification per event.
type Classifier struct {
	catalog  *Catalog
	matcher  *Matcher
	creative CreativeClassifier
	tracker  *Tracker
	mode     Mode
}

// NewClassifier wires a classifier in the given mode. creative may be nil,
// in which case every mode degrades to rule-only behavior.
func NewClassifier(catalog *Catalog, creative CreativeClassifier, tracker *Tracker, mode Mode) *Classifier {
	return &Classifier{
		catalog:  catalog,
		matcher:  NewMatcher(catalog),
		creative: creative,
		tracker:  tracker,
		mode:     mode,
	}
}

// Tracker exposes the classifier's sequence tracker for session lifecycle
// management (stats, clearing on session start).
func (c *Classifier) Tracker() *Tracker {
	return c.tracker
}

// Classify produces a classification for the event according to the
// configured mode, records the resulting label in the session's history,
// and attaches a sequence match when one fires. Never returns an error:
// creative failures fall back to the rule result.
func (c *Classifier) Classify(ctx context.Context, ev *Event) *Classification {
	mode := c.mode
	if c.creative == nil {
		mode = ModeRule
	}

	var result *Classification
	switch mode {
	case ModeCreative:
		result = c.creativeResult(ctx, ev)
	case ModeHybrid:
		result = c.hybridResult(ctx, ev)
	default:
		result = c.ruleResult(ev)
	}

	if c.tracker != nil {
		if match := c.tracker.AddEmotion(ev.SessionID, result.Label, ev.ID); match != nil {
			result.Sequence = match
			result.Display = DisplaySequence
		}
	}

	return result
}

func (c *Classifier) ruleResult(ev *Event) *Classification {
	m := c.matcher.Classify(ev)
	return &Classification{
		Label:      m.Label,
		Cue:        m.Cue,
		Intensity:  m.Intensity,
		Confidence: m.Confidence,
		Display:    DisplayNormal,
		Rare:       m.Rare,
		Tags:       m.Tags,
		Mode:       ModeRule,
	}
}

func (c *Classifier) creativeResult(ctx context.Context, ev *Event) *Classification {
	cr, err := c.creative.Classify(ctx, ev)
	if err != nil || cr == nil {
		return c.ruleResult(ev)
	}
	return &Classification{
		Label:      LabelCreative,
		Cue:        cr.Cue,
		Intensity:  clampIntensity(cr.Intensity),
		Confidence: creativeConfidence,
		Display:    NormalizeDisplayMode(cr.Display),
		Tags:       cr.Tags,
		Mode:       ModeCreative,
		Note:       cr.Note,
		Caption:    cr.Caption,
	}
}

func (c *Classifier) hybridResult(ctx context.Context, ev *Event) *Classification {
	rule := c.ruleResult(ev)
	if rule.Confidence >= hybridEscalationThreshold {
		return rule
	}

	cr, err := c.creative.Classify(ctx, ev)
	if err != nil || cr == nil {
		return rule
	}
	return mergeCreative(rule, cr)
}

// mergeCreative combines a low-confidence rule result with a creative one:
// the rule keeps naming the emotion, the creative side supplies the
// presentation.
func mergeCreative(rule *Classification, cr *CreativeResult) *Classification {
	tags := rule.Tags
	for _, t := range cr.Tags {
		if !containsString(tags, t) {
			tags = append(tags, t)
		}
	}

	return &Classification{
		Label:      rule.Label,
		Cue:        cr.Cue,
		Intensity:  clampIntensity(cr.Intensity),
		Confidence: hybridConfidence,
		Display:    NormalizeDisplayMode(cr.Display),
		Rare:       rule.Rare,
		Tags:       tags,
		Mode:       ModeHybrid,
		Note:       cr.Note,
		Caption:    cr.Caption,
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
