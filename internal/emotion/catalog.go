package emotion

// Rule is a static catalog entry mapping content patterns to a label.
// Patterns are lowercase substrings matched independently against the
// event text; the more of them hit, the higher the confidence.
type Rule struct {
	Name      string
	Patterns  []string
	Intensity int // base intensity 1-10
	Rare      bool
	Tags      []string
	Cue       string // search cue for the media lookup
}

// Sequence is a static catalog entry describing an ordered label pattern.
// Each step is either an exact label or a category name; exact match is
// checked before category membership.
type Sequence struct {
	Name        string
	Steps       []string
	Virality    int
	Description string
}

// Catalog holds the rule, category, and sequence definitions. It is built
// once at startup and never mutated, so it is safe to share across
// goroutines without locking.
type Catalog struct {
	rules      []Rule
	sequences  []Sequence
	categories map[string][]string
}

// NewCatalog builds a catalog from explicit definitions. Order of rules
// and sequences is meaningful: it is the tie-break for rule matching and
// the first-match-wins order for sequence detection.
func NewCatalog(rules []Rule, sequences []Sequence, categories map[string][]string) *Catalog {
	return &Catalog{
		rules:      rules,
		sequences:  sequences,
		categories: categories,
	}
}

// Rules returns a copy of the rule definitions in catalog order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// RuleNames returns the configured rule names in catalog order.
func (c *Catalog) RuleNames() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return names
}

// RareRuleNames returns the names of rarity-flagged rules in catalog order.
func (c *Catalog) RareRuleNames() []string {
	var names []string
	for _, r := range c.rules {
		if r.Rare {
			names = append(names, r.Name)
		}
	}
	return names
}

// Sequences returns a copy of the sequence definitions in catalog order.
func (c *Catalog) Sequences() []Sequence {
	out := make([]Sequence, len(c.sequences))
	copy(out, c.sequences)
	return out
}

// stepMatches reports whether a label satisfies one sequence step:
// exact label equality first, category membership second.
func (c *Catalog) stepMatches(step, label string) bool {
	if step == label {
		return true
	}
	for _, member := range c.categories[step] {
		if member == label {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in rule, category, and sequence
// definitions. Order matters twice: earlier rules win confidence ties, and
// earlier sequences win when multiple patterns match the same tail (so the
// exact sequences come before the category-level ones they specialize).
func DefaultCatalog() *Catalog {
	rules := []Rule{
		{
			Name:      "nailed-it",
			Patterns:  []string{"tests pass", "all tests", "pass", "0 errors", "0 failures", "build succeeded"},
			Intensity: 8,
			Tags:      []string{"triumph", "hype"},
			Cue:       "victory celebration nailed it",
		},
		{
			Name:      "eureka",
			Patterns:  []string{"figured it out", "that's it", "aha", "now i see", "root cause", "the real problem"},
			Intensity: 9,
			Rare:      true,
			Tags:      []string{"breakthrough"},
			Cue:       "eureka moment lightbulb",
		},
		{
			Name:      "mind-blown",
			Patterns:  []string{"mind blown", "incredible", "unbelievable", "what the", "wait, this actually"},
			Intensity: 9,
			Rare:      true,
			Tags:      []string{"hype"},
			Cue:       "mind blown explosion",
		},
		{
			Name:      "spiraling",
			Patterns:  []string{"still failing", "not again", "third time", "why won't", "same error"},
			Intensity: 8,
			Rare:      true,
			Tags:      []string{"struggle"},
			Cue:       "this is fine fire",
		},
		{
			Name:      "frustrated",
			Patterns:  []string{"error", "failed", "failure", "broken", "doesn't work", "exception", "traceback", "permission denied"},
			Intensity: 6,
			Tags:      []string{"struggle"},
			Cue:       "facepalm fail frustrated",
		},
		{
			Name:      "confused",
			Patterns:  []string{"strange", "weird", "unexpected", "unclear", "odd", "doesn't make sense", "wait, what"},
			Intensity: 5,
			Tags:      []string{"struggle"},
			Cue:       "confused math lady",
		},
		{
			Name:      "victorious",
			Patterns:  []string{"fixed", "solved", "working now", "complete", "succeeded", "it works"},
			Intensity: 8,
			Tags:      []string{"triumph"},
			Cue:       "champion winner celebration",
		},
		{
			Name:      "relieved",
			Patterns:  []string{"finally", "phew", "at last", "took a while"},
			Intensity: 6,
			Tags:      []string{"triumph"},
			Cue:       "sigh of relief",
		},
		{
			Name:      "debugging",
			Patterns:  []string{"debug", "stack trace", "breakpoint", "reproduce", "bisect", "narrowing down"},
			Intensity: 6,
			Tags:      []string{"struggle", "focus"},
			Cue:       "detective investigating clues",
		},
		{
			Name:      "deep-focus",
			Patterns:  []string{"refactor", "implement", "let me write", "carefully", "step by step"},
			Intensity: 7,
			Tags:      []string{"focus"},
			Cue:       "hacker typing fast in the zone",
		},
		{
			Name:      "curious",
			Patterns:  []string{"interesting", "let me look", "let me check", "what's in", "exploring", "hmm"},
			Intensity: 5,
			Tags:      []string{"explore"},
			Cue:       "curious investigating magnifying glass",
		},
		{
			Name:      "shipping",
			Patterns:  []string{"commit", "push", "deploy", "release", "merged"},
			Intensity: 7,
			Tags:      []string{"momentum"},
			Cue:       "ship it rocket launch",
		},
	}

	categories := map[string][]string{
		"struggle": {"frustrated", "confused", "debugging", "spiraling", LabelError},
		"triumph":  {"nailed-it", "victorious", "eureka", "relieved", LabelSuccess},
		"flow":     {"deep-focus", "curious", "shipping", LabelNeutral},
	}

	sequences := []Sequence{
		{
			Name:        "comeback-arc",
			Steps:       []string{"frustrated", "frustrated", "eureka"},
			Virality:    85,
			Description: "two failures, then the breakthrough",
		},
		{
			Name:        "meltdown",
			Steps:       []string{"frustrated", "frustrated", "frustrated", "spiraling"},
			Virality:    90,
			Description: "a losing streak collapsing in on itself",
		},
		{
			Name:        "redemption",
			Steps:       []string{"struggle", "struggle", "triumph"},
			Virality:    70,
			Description: "grinding through trouble into a win",
		},
		{
			Name:        "rollercoaster",
			Steps:       []string{"triumph", "struggle", "triumph"},
			Virality:    75,
			Description: "a win, a stumble, another win",
		},
		{
			Name:        "flow-state",
			Steps:       []string{"deep-focus", "deep-focus", "deep-focus"},
			Virality:    60,
			Description: "three straight rounds of uninterrupted focus",
		},
		{
			Name:        "shipping-spree",
			Steps:       []string{"shipping", "shipping", "shipping"},
			Virality:    65,
			Description: "landing change after change",
		},
	}

	return NewCatalog(rules, sequences, categories)
}
