package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dlemos/caderno/internal/config"
	"github.com/dlemos/caderno/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "caderno",
	Short: "AI study sessions over your own notes",
	Long: "Caderno — a terminal study companion. Point it at a folder of markdown\n" +
		"or PDF notes and study them in Learning, Interview, or Pair Programming mode.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", "", false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides CADERNO_CONFIG)")
	rootCmd.PersistentFlags().String("notes", "", "Notes directory (overrides config)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CADERNO_DB)")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig resolves and loads the config file, applying flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if d, _ := cmd.Flags().GetString("notes"); d != "" {
		cfg.NotesDir = d
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then CADERNO_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
