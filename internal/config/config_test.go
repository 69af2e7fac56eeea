package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", cfg.LLM.Provider)
	}
	if cfg.Folders.Interviews != "entrevistas" {
		t.Errorf("interviews folder = %q, want entrevistas", cfg.Folders.Interviews)
	}
	if cfg.Session.PrefetchAhead != 2 {
		t.Errorf("prefetch ahead = %d, want 2", cfg.Session.PrefetchAhead)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "notes_dir: /tmp/notes\nllm:\n  provider: gemini\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NotesDir != "/tmp/notes" {
		t.Errorf("notes dir = %q", cfg.NotesDir)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.LLM.Provider)
	}
	// Unset fields fall back to defaults.
	if cfg.Folders.Challenges != "desafios" {
		t.Errorf("challenges folder = %q, want desafios", cfg.Folders.Challenges)
	}
	if cfg.Session.MaxSupportLevel != 4 {
		t.Errorf("max support level = %d, want 4", cfg.Session.MaxSupportLevel)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("notes_dir: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CADERNO_NOTES_DIR", "/env/notes")
	t.Setenv("CADERNO_LLM_PROVIDER", "openai")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NotesDir != "/env/notes" {
		t.Errorf("notes dir = %q, want /env/notes", cfg.NotesDir)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("provider = %q, want openai", cfg.LLM.Provider)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.NotesDir = "/home/learner/notes"
	if err := Write(path, cfg); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.NotesDir != "/home/learner/notes" {
		t.Errorf("notes dir = %q", got.NotesDir)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing notes_dir")
	}
	cfg.NotesDir = "/notes"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
