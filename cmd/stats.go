package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().Stats(context.Background())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		if stats.TotalSessions == 0 {
			fmt.Println("No study sessions recorded yet.")
			return nil
		}

		fmt.Printf("Sessions:         %d (%d completed)\n",
			stats.TotalSessions, stats.CompletedSessions)
		fmt.Printf("Items completed:  %d\n", stats.ItemsCompleted)
		fmt.Printf("Time studied:     %s\n", formatSecs(stats.TotalDurationSecs))

		if len(stats.SessionsByMode) > 0 {
			fmt.Println()
			fmt.Println("By mode")
			fmt.Println(strings.Repeat("─", 24))

			modes := make([]string, 0, len(stats.SessionsByMode))
			for m := range stats.SessionsByMode {
				modes = append(modes, m)
			}
			sort.Strings(modes)
			for _, m := range modes {
				fmt.Printf("%-12s  %6d\n", m, stats.SessionsByMode[m])
			}
		}
		return nil
	},
}

func formatSecs(secs int) string {
	if secs >= 3600 {
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	}
	return fmt.Sprintf("%dm", secs/60)
}
