package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/feelsy/internal/hooks"
	"github.com/ihavespoons/feelsy/internal/logger"
)

var captureEvent string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a hook event from Claude Code",
	Long: `Capture a hook event from Claude Code.

This command reads the hook JSON from stdin, appends a feed entry to
~/.feelsy/feed.jsonl, nudges the daemon if one is running, and tells
Claude Code to continue. It is an observer: it never blocks or modifies
anything, and it never fails the hook.

Example hook configuration:
  feelsy capture --event PostToolUse`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&captureEvent, "event", "e", "", "Hook event type (required)")
	_ = captureCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	// Hooks run inside the agent's tool loop; stay quiet unless asked
	if verbose {
		_ = logger.Init("debug", cfg.Settings.LogFile)
	} else if cfg.Settings.LogFile != "" {
		_ = logger.Init(cfg.Settings.LogLevel, cfg.Settings.LogFile)
	} else {
		logger.InitQuiet()
	}

	// Whatever happens below, the agent continues
	defer writeHookResponse()

	eventType, ok := hooks.ParseEventType(captureEvent)
	if !ok {
		logger.Warn().Str("event", captureEvent).Msg("Unknown hook event type")
		return nil
	}

	stdin, err := io.ReadAll(io.LimitReader(os.Stdin, 10<<20))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read hook input")
		return nil
	}

	entry, err := buildEntry(eventType, stdin)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to parse hook input")
		return nil
	}

	feedFile, err := cfg.FeedFilePath()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to resolve feed file")
		return nil
	}

	if err := hooks.WriteFeedEntry(feedFile, entry); err != nil {
		logger.Warn().Err(err).Msg("Failed to write feed entry")
		return nil
	}

	nudgeDaemon(cfg.Settings.Daemon.Port)
	return nil
}

func buildEntry(eventType hooks.EventType, stdin []byte) (*hooks.FeedEntry, error) {
	switch eventType {
	case hooks.PostToolUse:
		var input hooks.PostToolUseInput
		if err := json.Unmarshal(stdin, &input); err != nil {
			return nil, err
		}
		return hooks.NewPostToolUseEntry(&input), nil
	case hooks.Stop:
		var input hooks.StopInput
		if err := json.Unmarshal(stdin, &input); err != nil {
			return nil, err
		}
		return hooks.NewStopEntry(&input), nil
	case hooks.SessionStart:
		var input hooks.SessionStartInput
		if err := json.Unmarshal(stdin, &input); err != nil {
			return nil, err
		}
		return hooks.NewSessionStartEntry(&input), nil
	case hooks.SessionEnd:
		var input hooks.SessionEndInput
		if err := json.Unmarshal(stdin, &input); err != nil {
			return nil, err
		}
		return hooks.NewSessionEndEntry(&input), nil
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
}

// nudgeDaemon fires a wake-up POST at the daemon so the new entry gets
// picked up immediately. Fire-and-forget: a missing daemon is normal.
func nudgeDaemon(port int) {
	if port == 0 {
		port = 8765
	}

	client := &http.Client{Timeout: 100 * time.Millisecond}
	url := fmt.Sprintf("http://127.0.0.1:%d/ingest", port)

	resp, err := client.Post(url, "application/json", bytes.NewReader(nil))
	if err != nil {
		logger.Debug().Err(err).Msg("Daemon not reachable, feed entry queued")
		return
	}
	_ = resp.Body.Close()
}

func writeHookResponse() {
	_ = json.NewEncoder(os.Stdout).Encode(hooks.HookResponse{Continue: true})
}
