// Package config handles reading and writing ~/.config/caderno/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version int `yaml:"version"`

	// NotesDir is the root of the study notes library.
	NotesDir string `yaml:"notes_dir"`

	LLM     LLMConfig     `yaml:"llm"`
	Folders FoldersConfig `yaml:"folders"`
	Session SessionConfig `yaml:"session"`
}

// LLMConfig selects the provider and model used for generation.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "anthropic" | "openai" | "gemini" | "mock"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // OpenAI-compatible endpoint override
}

// FoldersConfig names the sibling folders transcripts are saved into,
// one per study mode.
type FoldersConfig struct {
	Interviews string `yaml:"interviews"`
	Exercises  string `yaml:"exercises"`
	Challenges string `yaml:"challenges"`
}

// SessionConfig controls study session behaviour.
type SessionConfig struct {
	// PrefetchAhead is how many upcoming concept intros Learning Mode
	// pre-generates in the background.
	PrefetchAhead int `yaml:"prefetch_ahead"`

	// MaxSupportLevel caps the Learning Mode support ratchet.
	MaxSupportLevel int `yaml:"max_support_level"`
}

const (
	configDirName = "caderno"
	configFile    = "config.yaml"
)

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet",
		},
		Folders: FoldersConfig{
			Interviews: "entrevistas",
			Exercises:  "exercicios",
			Challenges: "desafios",
		},
		Session: SessionConfig{
			PrefetchAhead:   2,
			MaxSupportLevel: 4,
		},
	}
}

// Path resolves the config file location:
// 1. CADERNO_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/caderno/config.yaml
// 3. ~/.config/caderno/config.yaml
func Path() (string, error) {
	if p := os.Getenv("CADERNO_CONFIG"); p != "" {
		return p, nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, configDirName, configFile), nil
}

// Load reads the config file at path, applies defaults for unset fields,
// and then applies environment overrides. A missing file is not an error:
// defaults plus environment are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Write writes cfg to path, creating the parent directory if needed.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyDefaults fills zero-valued fields a partial YAML file left unset.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.LLM.Provider == "" {
		c.LLM.Provider = def.LLM.Provider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.Folders.Interviews == "" {
		c.Folders.Interviews = def.Folders.Interviews
	}
	if c.Folders.Exercises == "" {
		c.Folders.Exercises = def.Folders.Exercises
	}
	if c.Folders.Challenges == "" {
		c.Folders.Challenges = def.Folders.Challenges
	}
	if c.Session.PrefetchAhead == 0 {
		c.Session.PrefetchAhead = def.Session.PrefetchAhead
	}
	if c.Session.MaxSupportLevel == 0 {
		c.Session.MaxSupportLevel = def.Session.MaxSupportLevel
	}
}

// applyEnv overrides fields from CADERNO_* environment variables.
func (c *Config) applyEnv() {
	if d := os.Getenv("CADERNO_NOTES_DIR"); d != "" {
		c.NotesDir = d
	}
	if p := os.Getenv("CADERNO_LLM_PROVIDER"); p != "" {
		c.LLM.Provider = p
	}
	if m := os.Getenv("CADERNO_LLM_MODEL"); m != "" {
		c.LLM.Model = m
	}
}

// Validate checks the config for required fields.
func (c *Config) Validate() error {
	if c.NotesDir == "" {
		return fmt.Errorf("notes_dir is not set (config file or CADERNO_NOTES_DIR)")
	}
	if c.Session.MaxSupportLevel < 1 {
		return fmt.Errorf("max_support_level must be at least 1")
	}
	return nil
}
