package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/dlemos/caderno/internal/notes"
)

var previewCmd = &cobra.Command{
	Use:   "preview <note>",
	Short: "Render a markdown note in the terminal",
	Long: `Render a note from the library with terminal markdown styling.

A quick way to check what the study modes will read, without starting a
session. PDF notes cannot be previewed here.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("width", 100, "Wrap width")
}

func runPreview(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lib := notes.NewLibrary(cfg.NotesDir, notes.FolderNames{
		Interviews: cfg.Folders.Interviews,
		Exercises:  cfg.Folders.Exercises,
		Challenges: cfg.Folders.Challenges,
	})

	note, err := lib.Find(args[0])
	if err != nil {
		return err
	}
	if note.IsPDF() {
		return fmt.Errorf("%s is a PDF; preview supports markdown notes only", note.RelPath)
	}

	content, err := note.Content()
	if err != nil {
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(string(content))
	if err != nil {
		return fmt.Errorf("render note: %w", err)
	}
	fmt.Print(out)
	return nil
}
