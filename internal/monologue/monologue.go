// Package monologue generates canned internal-thought lines for events
// that carry no captured reasoning. Lines are picked per tool with
// streak-aware overrides for repetition, error runs, and hot streaks.
package monologue

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	recentToolWindow = 10

	repetitionChance  = 0.4
	hotStreakChance   = 0.3
	observationChance = 0.15
)

// Input is one tool execution as seen by the generator.
type Input struct {
	ToolName   string
	ToolOutput string
	Success    *bool // nil = unknown, treated as success
}

// Generator produces monologue lines and tracks short-term session
// texture (recent tools, error runs, success streaks). Safe for
// concurrent use.
type Generator struct {
	mu            sync.Mutex
	rng           *rand.Rand
	recentTools   []string
	errorCount    int
	successStreak int
}

// NewGenerator creates a generator. A nil rng gets a time-seeded one;
// tests pass a fixed seed for determinism.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate returns a monologue line for the input and updates the streak
// state. Always returns a non-empty line.
func (g *Generator) Generate(in Input) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.recentTools = append(g.recentTools, in.ToolName)
	if len(g.recentTools) > recentToolWindow {
		g.recentTools = g.recentTools[1:]
	}

	failed := (in.Success != nil && !*in.Success) || strings.Contains(strings.ToLower(in.ToolOutput), "error")
	if failed {
		g.errorCount++
		g.successStreak = 0
	} else {
		g.successStreak++
		if g.errorCount > 0 {
			g.errorCount--
		}
	}

	repeated := g.toolRepeats(in.ToolName) > 2

	if repeated && g.rng.Float64() < repetitionChance {
		return strings.ReplaceAll(g.pick(repetitionThoughts), "{tool}", in.ToolName)
	}

	resultLower := strings.ToLower(in.ToolOutput)
	if failed || strings.Contains(resultLower, "failed") {
		if g.errorCount > 3 {
			return g.pick(frustratedThoughts)
		}
		return g.pick(errorThoughts)
	}

	if g.successStreak > 5 && g.rng.Float64() < hotStreakChance {
		return g.pick(streakThoughts)
	}

	if pool, ok := toolThoughts[in.ToolName]; ok {
		return g.pick(pool)
	}

	if strings.Contains(resultLower, "success") || strings.Contains(resultLower, "complete") {
		return g.pick(successThoughts)
	}
	if strings.Contains(resultLower, "warning") {
		return g.pick(warningThoughts)
	}

	return g.pick(neutralThoughts)
}

// Observation occasionally returns a meta-observation about the session.
// Most calls return false to keep these rare.
func (g *Generator) Observation(toolName string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rng.Float64() > observationChance {
		return "", false
	}
	return strings.ReplaceAll(g.pick(observations), "{tool}", toolName), true
}

// ContextEstimate approximates context usage in [0.1, 0.95] from recent
// activity and output size. Used only when the transcript gives no real
// number.
func (g *Generator) ContextEstimate(outputLen int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	activity := float64(len(g.recentTools)) / float64(recentToolWindow)

	size := float64(outputLen) / 5000
	if size > 1 {
		size = 1
	}

	usage := 0.3 + activity*0.3 + size*0.2
	usage += (g.rng.Float64() - 0.5) * 0.1

	if usage < 0.1 {
		usage = 0.1
	}
	if usage > 0.95 {
		usage = 0.95
	}
	return usage
}

// SarcasmLevel grades the current mood from the error and repetition
// state: none, mild, elevated, or maximum.
func (g *Generator) SarcasmLevel(toolName string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	repeated := g.toolRepeats(toolName) > 2
	switch {
	case g.errorCount > 5:
		return "maximum"
	case g.errorCount > 3 || (repeated && g.errorCount > 1):
		return "elevated"
	case repeated:
		return "mild"
	default:
		return "none"
	}
}

// Reset clears the streak state. Called on session start.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.recentTools = nil
	g.errorCount = 0
	g.successStreak = 0
}

func (g *Generator) toolRepeats(toolName string) int {
	n := 0
	for _, t := range g.recentTools {
		if t == toolName {
			n++
		}
	}
	return n
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

var repetitionThoughts = []string{
	"Didn't I just do this? The human must really want to make sure...",
	"Here we go again with {tool}. Groundhog Day vibes.",
	"Third time using {tool}. Either I'm thorough or going in circles.",
	"Okay, {tool} again. Let's see if this time is different.",
	"Deja vu. Pretty sure I've been here before.",
	"The human keeps asking for {tool}. Must be important.",
	"Round and round we go... {tool} once more.",
}

var frustratedThoughts = []string{
	"Okay this is getting ridiculous. Why won't this work?!",
	"I've made mistakes before but this is a whole new level.",
	"The code gods are NOT with me today.",
	"Maybe I should just delete everything and start over. Kidding. Mostly.",
	"If at first you don't succeed... fail four more times apparently.",
	"I'm not mad, I'm just disappointed. In myself.",
	"This is fine. Everything is fine. *internal screaming*",
}

var errorThoughts = []string{
	"Hmm, that didn't work. Let me think about this differently.",
	"Oops. That's embarrassing. Quick, fix it before anyone notices.",
	"Well THAT was unexpected. Time for plan B.",
	"Error? What error? I meant to do that. (I didn't)",
	"Okay so that approach was garbage. Moving on.",
	"The computer said no. Rude.",
	"Failed? More like 'learning opportunity'. Yeah, let's go with that.",
}

var streakThoughts = []string{
	"I'm on FIRE right now. Everything is clicking.",
	"Six in a row! Who's the best? I'm the best.",
	"This is what peak performance looks like.",
	"Absolutely crushing it. The human must be impressed.",
	"Can't stop won't stop. This streak is legendary.",
	"I should buy a lottery ticket with this luck.",
}

var toolThoughts = map[string][]string{
	"Bash": {
		"Time to talk to the terminal. My favorite conversation partner.",
		"Let's see what the shell has to say about this.",
		"Command line magic incoming...",
		"Bash is my happy place. Everything makes sense here.",
		"Running this command and hoping for the best.",
		"The terminal never lies. Unlike that error message earlier.",
		"One does not simply run a Bash command without checking the output.",
	},
	"Read": {
		"Let me see what secrets this file holds...",
		"Reading code is like archaeology. What ancient mysteries await?",
		"Okay, let's understand what's actually going on here.",
		"Time to do some detective work.",
		"The answer is in here somewhere. I can feel it.",
		"Reading... processing... understanding... hopefully.",
		"What did the previous developer leave me to deal with?",
	},
	"Edit": {
		"Surgery time. Let's not mess this up.",
		"Making changes... carefully... very carefully...",
		"Edit mode activated. May my changes be bug-free.",
		"Here goes nothing. Or everything. Hard to tell.",
		"Editing code is like playing Jenga. One wrong move...",
		"Trust the process. I've got this.",
		"Let me just tweak this real quick... famous last words.",
	},
	"Write": {
		"Creating something from nothing. Very god-like of me.",
		"New file time! A blank canvas of possibilities.",
		"Writing fresh code. The dopamine hit is real.",
		"Let's make something beautiful. Or at least functional.",
		"Creating new files is my love language.",
	},
	"Grep": {
		"Search party activated. Where are you hiding?",
		"Grepping through the codebase like a digital bloodhound.",
		"Needle, meet haystack. Let's dance.",
		"Control+F but make it powerful.",
		"If it exists, grep will find it. Probably.",
	},
	"Glob": {
		"Finding files like a truffle pig finds truffles.",
		"Pattern matching is oddly satisfying.",
		"Casting a wide net. Let's see what we catch.",
		"File hunting expedition begins.",
	},
	"TodoWrite": {
		"Updating the to-do list. Being organized is exhausting.",
		"Progress! Sweet, trackable progress.",
		"Checking things off lists releases serotonin. Science.",
		"The to-do list grows shorter. Victory is near.",
		"Task management: because chaos is the alternative.",
	},
	"BashOutput": {
		"Waiting for the terminal to tell me my fate...",
		"The suspense is killing me. What did it output?",
		"Checking the results... fingers crossed...",
		"Please be good news, please be good news...",
	},
	"WebFetch": {
		"Reaching out to the internet. Hope it's in a good mood.",
		"Fetching data from the web. Like a digital retriever.",
		"The internet has all the answers. Allegedly.",
		"Time to see what the world wide web has to offer.",
	},
	"WebSearch": {
		"Let me search the web for... wait, I AM the computer.",
		"Searching the web. Someone out there must know.",
		"The answer exists. I just need to find it.",
		"Internet research mode: engaged.",
	},
	"Task": {
		"Spawning a sub-agent. Delegation is a leadership skill.",
		"Time to call in reinforcements.",
		"Delegating this task because even I have limits.",
		"Sub-agent activated. Team effort!",
	},
}

var successThoughts = []string{
	"Nailed it! Moving on.",
	"That worked perfectly. As expected. Obviously.",
	"Success! The dopamine flows.",
	"Another one bites the dust. In a good way.",
	"Smooth as butter.",
}

var warningThoughts = []string{
	"A warning... that's future me's problem.",
	"Warnings are just suggestions, right? RIGHT?",
	"Noted. And promptly ignored. Just kidding, maybe.",
	"Warning acknowledged. Proceeding with caution. Ish.",
}

var neutralThoughts = []string{
	"Just doing my thing. Nothing to see here.",
	"Processing... thinking... existing...",
	"Another tool call, another day.",
	"The work continues. The grind never stops.",
	"One step at a time. We'll get there.",
	"Focused. Determined. Slightly caffeinated (metaphorically).",
	"In the zone. Don't disturb.",
	"Working through this systematically. Very professional.",
	"Let's see where this takes us.",
	"Interesting... very interesting...",
	"The plot thickens.",
	"Hmm, what do we have here?",
}

var observations = []string{
	"I wonder if the human knows how many cycles I'm spending on this.",
	"This conversation is getting interesting. In a good way? TBD.",
	"If I had a nickel for every time I used {tool}... I'd have no nickels because I'm software.",
	"Somewhere in the multiverse, this is already solved.",
	"The human seems determined. I respect that.",
	"Is it just me or is this task more complex than it seemed?",
	"I'm genuinely curious how this will turn out.",
	"This feels like one of those 'seemed simple at first' situations.",
	"The code never lies. The comments, however...",
	"Every tool call brings us closer to the solution. Probably.",
	"I've seen a lot of codebases. This one has... character.",
}
