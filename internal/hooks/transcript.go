package hooks

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxContextTokens matches the context window Claude Code divides by when
// reporting usage in /context.
const maxContextTokens = 200000

// maxThinkingLen caps how much of a thinking block the capture forwards.
const maxThinkingLen = 2000

// transcriptLine is the subset of a Claude Code transcript JSONL entry the
// capture path cares about. Everything else is ignored.
type transcriptLine struct {
	IsSidechain       bool               `json:"isSidechain"`
	IsAPIErrorMessage bool               `json:"isApiErrorMessage"`
	Message           *transcriptMessage `json:"message"`
	Usage             *tokenUsage        `json:"usage"`
}

type transcriptMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
	Usage   *tokenUsage    `json:"usage"`
}

type contentBlock struct {
	Type     string `json:"type"`
	Thinking string `json:"thinking"`
}

type tokenUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheReadTokens     int `json:"cache_read_input_tokens"`
	CacheCreationTokens int `json:"cache_creation_input_tokens"`
}

func (u *tokenUsage) total() int {
	return u.InputTokens + u.OutputTokens + u.CacheReadTokens + u.CacheCreationTokens
}

// LatestThinking returns the most recent extended-thinking block from the
// session transcript, truncated to a forwardable size. Sidechain entries
// (parallel agent calls) are skipped.
func LatestThinking(transcriptPath string) (string, error) {
	var latest string

	err := scanTranscript(transcriptPath, func(line *transcriptLine) {
		if line.IsSidechain || line.Message == nil || line.Message.Role != "assistant" {
			return
		}
		for _, block := range line.Message.Content {
			if block.Type == "thinking" && block.Thinking != "" {
				latest = block.Thinking
			}
		}
	})
	if err != nil {
		return "", err
	}

	if len(latest) > maxThinkingLen {
		latest = latest[:maxThinkingLen]
	}
	return latest, nil
}

// ContextUsage computes the session's context usage fraction [0,1] from the
// most recent entry carrying token counts, mirroring Claude Code's own
// calculation: all token types summed, divided by the full window.
func ContextUsage(transcriptPath string) (float64, error) {
	var latest *tokenUsage

	err := scanTranscript(transcriptPath, func(line *transcriptLine) {
		if line.IsSidechain || line.IsAPIErrorMessage {
			return
		}
		if line.Message != nil && line.Message.Usage != nil {
			latest = line.Message.Usage
		} else if line.Usage != nil {
			latest = line.Usage
		}
	})
	if err != nil {
		return 0, err
	}

	if latest == nil {
		return 0, fmt.Errorf("no token usage in transcript %s", transcriptPath)
	}

	usage := float64(latest.total()) / maxContextTokens
	if usage > 1.0 {
		usage = 1.0
	}
	return usage, nil
}

// scanTranscript walks the transcript JSONL line by line. Unparseable
// lines are skipped, not fatal: transcripts are appended to while we read.
func scanTranscript(path string, visit func(*transcriptLine)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line transcriptLine
		if err := json.Unmarshal(raw, &line); err != nil {
			continue
		}
		visit(&line)
	}

	return scanner.Err()
}
