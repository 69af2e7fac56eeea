package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dlemos/caderno/internal/app"
	"github.com/dlemos/caderno/internal/audio"
	"github.com/dlemos/caderno/internal/config"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/logx"
	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/screens/home"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/study"
)

// runApp builds all dependencies and launches the TUI. A non-empty
// noteRef jumps straight into a session over that note; resume restores
// the latest saved session for it instead of starting fresh.
func runApp(cmd *cobra.Command, noteRef, modeName string, resume bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w\n\nSet notes_dir in the config file or run with --notes <dir>", err)
	}

	logger, closeLog, err := logx.New(logx.Options{})
	if err != nil {
		logger = logx.Discard()
	} else {
		defer closeLog()
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := llm.NewProvider(ctx, providerConfig(cfg), st.EventRepo())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	lib := notes.NewLibrary(cfg.NotesDir, notes.FolderNames{
		Interviews: cfg.Folders.Interviews,
		Exercises:  cfg.Folders.Exercises,
		Challenges: cfg.Folders.Challenges,
	})

	watcher, err := notes.Watch(lib)
	if err != nil {
		logger.Warn("library watch unavailable", "err", err)
		watcher = nil
	}

	transcriber, err := audio.NewWhisperTranscriber("", cfg.LLM.BaseURL)
	if err != nil {
		logger.Warn("audio transcription unavailable", "err", err)
		transcriber = nil
	}

	deps := app.Deps{
		Config:    cfg,
		Library:   lib,
		Provider:  provider,
		EventRepo: st.EventRepo(),
		Snapshots: st.SnapshotRepo(),
		Logger:    logger,
		Watcher:   watcher,
	}
	if transcriber != nil {
		deps.Transcriber = transcriber
	}

	if noteRef != "" {
		note, err := lib.Find(noteRef)
		if err != nil {
			return err
		}
		mode, err := parseMode(modeName)
		if err != nil {
			return err
		}

		var resumeSess *study.Session
		if resume {
			resumeSess, err = loadResume(ctx, st.SnapshotRepo(), note.RelPath)
			if err != nil {
				return err
			}
			mode = resumeSess.Mode()
		}

		deps.StartScreen = home.ModeScreen(home.Deps{
			Config:      deps.Config,
			Library:     deps.Library,
			Provider:    deps.Provider,
			Transcriber: deps.Transcriber,
			EventRepo:   deps.EventRepo,
			Snapshots:   deps.Snapshots,
		}, *note, mode, resumeSess)
	}

	return app.Run(deps)
}

// loadResume restores the most recent saved session and checks that it
// belongs to the requested note and is still unfinished.
func loadResume(ctx context.Context, snaps store.SnapshotRepo, notePath string) (*study.Session, error) {
	snap, err := snaps.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no saved session to resume")
	}
	if snap.Data.Version != store.SnapshotVersion {
		return nil, fmt.Errorf("saved session has unsupported version %d", snap.Data.Version)
	}

	sess, err := study.Restore(snap.Data.Session)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if sess.NotePath() != notePath {
		return nil, fmt.Errorf("latest saved session is for %s; start that note or begin fresh", sess.NotePath())
	}
	if sess.IsComplete() {
		return nil, fmt.Errorf("latest saved session is already finished")
	}
	return sess, nil
}

// providerConfig merges the config file's llm section over the
// environment-derived defaults. Environment API keys always apply; the
// file selects provider and model.
func providerConfig(cfg *config.Config) llm.Config {
	lc := llm.ConfigFromEnv()

	if cfg.LLM.Provider != "" && os.Getenv("CADERNO_LLM_PROVIDER") == "" {
		lc.Provider = cfg.LLM.Provider
	}
	if m := cfg.LLM.Model; m != "" && os.Getenv("CADERNO_LLM_MODEL") == "" {
		switch lc.Provider {
		case "anthropic":
			lc.Anthropic.Model = m
		case "openai":
			lc.OpenAI.Model = m
		case "gemini":
			lc.Gemini.Model = m
		}
	}
	if cfg.LLM.BaseURL != "" {
		lc.OpenAI.BaseURL = cfg.LLM.BaseURL
	}

	if lc.Validate() != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			return discovered
		}
	}
	return lc
}

func parseMode(name string) (study.Mode, error) {
	switch name {
	case "", "learning":
		return study.ModeLearning, nil
	case "interview":
		return study.ModeInterview, nil
	case "pair":
		return study.ModePair, nil
	default:
		return "", fmt.Errorf("unknown mode %q: use learning, interview, or pair", name)
	}
}
