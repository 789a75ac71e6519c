package emotion

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestMatcherClassify(t *testing.T) {
	m := NewMatcher(DefaultCatalog())

	tests := []struct {
		name           string
		event          Event
		wantLabel      string
		wantIntensity  int
		wantConfidence float64
	}{
		{
			name: "multiple pattern hits cap confidence",
			event: Event{
				ToolName:   "Bash",
				ToolOutput: "all tests pass with 0 errors",
			},
			wantLabel:      "nailed-it",
			wantIntensity:  8,
			wantConfidence: 0.95,
		},
		{
			name: "single pattern hit",
			event: Event{
				ToolName:   "Bash",
				ToolOutput: "command failed",
			},
			wantLabel:      "frustrated",
			wantIntensity:  6,
			wantConfidence: 0.65,
		},
		{
			name: "tie keeps earlier catalog rule",
			event: Event{
				ToolOutput: "a strange exception",
			},
			wantLabel:      "frustrated",
			wantIntensity:  6,
			wantConfidence: 0.65,
		},
		{
			name: "no hits with success true",
			event: Event{
				ToolName:   "Bash",
				ToolOutput: "total 48 listing done",
				Success:    boolPtr(true),
			},
			wantLabel:      LabelSuccess,
			wantIntensity:  5,
			wantConfidence: 0.6,
		},
		{
			name: "no hits with success false bumps intensity",
			event: Event{
				ToolName:   "Bash",
				ToolOutput: "exit status 1",
				Success:    boolPtr(false),
			},
			wantLabel:      LabelError,
			wantIntensity:  6,
			wantConfidence: 0.6,
		},
		{
			name: "no hits with unknown success",
			event: Event{
				ToolName:   "Read",
				ToolOutput: "some file contents here",
			},
			wantLabel:      LabelNeutral,
			wantIntensity:  4,
			wantConfidence: 0.3,
		},
		{
			name:           "empty event is neutral",
			event:          Event{},
			wantLabel:      LabelNeutral,
			wantIntensity:  4,
			wantConfidence: 0.3,
		},
		{
			name: "empty event with failure still adjusts",
			event: Event{
				Success: boolPtr(false),
			},
			wantLabel:      LabelNeutral,
			wantIntensity:  5,
			wantConfidence: 0.3,
		},
		{
			name: "exclamation marks raise intensity",
			event: Event{
				ToolOutput: "error!!!!",
			},
			wantLabel:      "frustrated",
			wantIntensity:  8,
			wantConfidence: 0.65,
		},
		{
			name: "shouting raises intensity",
			event: Event{
				ToolOutput: "ERROR EVERYTHING IS BROKEN",
			},
			wantLabel:      "frustrated",
			wantIntensity:  7,
			wantConfidence: 0.8,
		},
		{
			name: "adjustments stack but clamp at 10",
			event: Event{
				ToolOutput: "BROKEN BUILD FAILED!!!!!!!!",
				Success:    boolPtr(false),
			},
			wantLabel:      "frustrated",
			wantIntensity:  10,
			wantConfidence: 0.8,
		},
		{
			name: "thinking text counts",
			event: Event{
				ToolName: "Bash",
				Thinking: "hmm, let me check the config",
			},
			wantLabel:      "curious",
			wantIntensity:  5,
			wantConfidence: 0.8,
		},
		{
			name: "rare label",
			event: Event{
				Thinking: "figured it out, the root cause was the cache",
			},
			wantLabel:      "eureka",
			wantIntensity:  9,
			wantConfidence: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Classify(&tt.event)
			if got.Label != tt.wantLabel {
				t.Errorf("got label %q, want %q", got.Label, tt.wantLabel)
			}
			if got.Intensity != tt.wantIntensity {
				t.Errorf("got intensity %d, want %d", got.Intensity, tt.wantIntensity)
			}
			if diff := got.Confidence - tt.wantConfidence; diff > 0.0001 || diff < -0.0001 {
				t.Errorf("got confidence %.2f, want %.2f", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestMatcherRareFlag(t *testing.T) {
	m := NewMatcher(DefaultCatalog())

	got := m.Classify(&Event{Thinking: "aha, now i see"})
	if got.Label != "eureka" {
		t.Fatalf("got label %q, want eureka", got.Label)
	}
	if !got.Rare {
		t.Error("eureka should be flagged rare")
	}

	got = m.Classify(&Event{ToolOutput: "the build failed"})
	if got.Rare {
		t.Errorf("%s should not be flagged rare", got.Label)
	}
}

func TestUppercaseRatio(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "empty", in: "", want: 0},
		{name: "no letters", in: "123 !!! ...", want: 0},
		{name: "all lower", in: "quiet text", want: 0},
		{name: "all upper", in: "LOUD", want: 1},
		{name: "half upper", in: "ABcd", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uppercaseRatio(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
