package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/feelsy/internal/logger"
	"github.com/ihavespoons/feelsy/internal/store"
)

var showStats bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Long: `List sessions recorded by the daemon, newest first.

Example:
  feelsy sessions
  feelsy sessions --stats`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&showStats, "stats", false, "Show aggregate statistics")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg := loadGlobalConfig()
	logger.InitQuiet()

	st, err := store.NewSQLiteStore(cfg.Settings.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open thought store: %w", err)
	}
	defer func() { _ = st.Close() }()

	sessions, err := st.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet")
	}

	for _, s := range sessions {
		state := "active"
		if s.EndedAt != nil {
			state = "ended " + s.EndedAt.Format("2006-01-02 15:04")
		}

		dominant := s.DominantEmotion
		if dominant == "" {
			dominant = "-"
		}

		fmt.Printf("%s  started %s  %-22s thoughts %-4d dominant %s\n",
			s.ID,
			s.StartedAt.Format("2006-01-02 15:04"),
			state,
			s.TotalThoughts,
			dominant,
		)
		if s.ProjectDir != "" && verbose {
			fmt.Printf("    project: %s\n", s.ProjectDir)
		}
	}

	if showStats {
		stats, err := st.Stats()
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}

		fmt.Printf("\n%d sessions, %d thoughts, %d viral moments\n",
			stats.TotalSessions, stats.TotalThoughts, stats.TotalViral)
		for emotionLabel, count := range stats.EmotionCounts {
			fmt.Printf("  %-12s %d\n", emotionLabel, count)
		}
	}

	return nil
}
