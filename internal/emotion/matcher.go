package emotion

import (
	"strings"
	"unicode"
)

// Confidence constants for the rule matcher.
const (
	neutralConfidence   = 0.3
	syntheticConfidence = 0.6
	baseConfidence      = 0.5
	perPatternBoost     = 0.15
	maxRuleConfidence   = 0.95
)

// Matcher maps raw event text to the best-matching catalog rule. It is a
// pure function over the catalog: no state, no I/O.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(catalog *Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Classify scores every rule against the event text and returns the best
// match, falling back to a synthetic success/error/neutral label when no
// rule hits. Confidence ties keep the earliest rule in catalog order.
func (m *Matcher) Classify(ev *Event) RuleMatch {
	raw := ev.ToolOutput + " " + ev.Thinking + " " + ev.ToolName
	blob := strings.ToLower(raw)

	if strings.TrimSpace(blob) == "" {
		return m.adjustIntensity(neutralMatch(), raw, ev.Success)
	}

	var best RuleMatch
	found := false
	for _, rule := range m.catalog.rules {
		hits := 0
		for _, pattern := range rule.Patterns {
			if strings.Contains(blob, pattern) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}

		confidence := baseConfidence + perPatternBoost*float64(hits)
		if confidence > maxRuleConfidence {
			confidence = maxRuleConfidence
		}

		// Strict > keeps the first rule on ties; catalog order is the
		// deterministic tie-break.
		if !found || confidence > best.Confidence {
			best = RuleMatch{
				Label:      rule.Name,
				Cue:        rule.Cue,
				Intensity:  rule.Intensity,
				Confidence: confidence,
				Rare:       rule.Rare,
				Tags:       append([]string(nil), rule.Tags...),
			}
			found = true
		}
	}

	if !found {
		best = syntheticMatch(ev.Success)
	}

	return m.adjustIntensity(best, raw, ev.Success)
}

// adjustIntensity applies the post-match intensity adjustments in order:
// explicit failure, exclamation density, shouting. Each step caps at 10 on
// its own, and the final value is clamped to [1,10].
func (m *Matcher) adjustIntensity(match RuleMatch, raw string, success *bool) RuleMatch {
	intensity := match.Intensity

	if success != nil && !*success {
		intensity = capAt10(intensity + 1)
	}

	if bangs := strings.Count(raw, "!") / 2; bangs > 0 {
		intensity = capAt10(intensity + bangs)
	}

	if uppercaseRatio(raw) > 0.3 {
		intensity = capAt10(intensity + 1)
	}

	match.Intensity = clampIntensity(intensity)
	return match
}

func neutralMatch() RuleMatch {
	return RuleMatch{
		Label:      LabelNeutral,
		Cue:        "processing thinking",
		Intensity:  4,
		Confidence: neutralConfidence,
	}
}

// syntheticMatch resolves an event no rule matched using the tri-state
// success flag.
func syntheticMatch(success *bool) RuleMatch {
	switch {
	case success == nil:
		return neutralMatch()
	case *success:
		return RuleMatch{
			Label:      LabelSuccess,
			Cue:        "feels good man",
			Intensity:  5,
			Confidence: syntheticConfidence,
			Tags:       []string{"triumph"},
		}
	default:
		return RuleMatch{
			Label:      LabelError,
			Cue:        "feels bad man",
			Intensity:  5,
			Confidence: syntheticConfidence,
			Tags:       []string{"struggle"},
		}
	}
}

// uppercaseRatio is the fraction of letters that are uppercase, 0 when the
// text has no letters.
func uppercaseRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
