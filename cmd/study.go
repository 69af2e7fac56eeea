package cmd

import (
	"github.com/spf13/cobra"
)

var studyCmd = &cobra.Command{
	Use:   "study <note>",
	Short: "Start a study session over one note",
	Long: `Launch the TUI directly into a session over the given note.

The note may be an absolute path or a path relative to the notes directory.
With --resume, the most recent session you left early over that note is
restored instead of starting fresh.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		resume, _ := cmd.Flags().GetBool("resume")
		return runApp(cmd, args[0], mode, resume)
	},
}

func init() {
	studyCmd.Flags().StringP("mode", "m", "learning", "Study mode: learning, interview, or pair")
	studyCmd.Flags().BoolP("resume", "r", false, "Resume the latest saved session for this note")
}
