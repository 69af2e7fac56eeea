// Package pair drives Pair Programming Mode: a coding challenge derived
// from a note, a navigator/driver dialog, and a suggested-code side
// channel carried alongside each assistant turn.
package pair

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

// Config controls Pair Programming Mode generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns Pair Programming defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Turn is one navigator response: the spoken reply plus optional code the
// navigator proposes. Structured extras travel in a schema-constrained
// request instead of being parsed out of prose.
type Turn struct {
	Reply         string
	SuggestedCode string
}

// Service generates pair-programming challenges and navigator turns.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a Pair Programming service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type challengeOutput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Starter     string `json:"starter_code"`
}

// GenerateChallenge derives a single coding challenge from the note. Pair
// sessions carry exactly one item.
func (s *Service) GenerateChallenge(ctx context.Context, noteTitle, noteText string, attachment *llm.Attachment) (*study.Item, error) {
	ctx = llm.WithPurpose(ctx, "pair-challenge")

	req := llm.Request{
		System: challengeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildChallengeUserMessage(noteTitle, noteText)},
		},
		Schema:      ChallengeSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	if attachment != nil {
		req.Attachments = []llm.Attachment{*attachment}
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("challenge generation: %w", err)
	}

	var out challengeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse challenge response: %w", err)
	}

	body := out.Description
	if out.Starter != "" {
		body += "\n\n```\n" + out.Starter + "\n```"
	}
	return &study.Item{Title: out.Title, Body: body}, nil
}

type turnOutput struct {
	Reply         string `json:"reply"`
	SuggestedCode string `json:"suggested_code"`
}

// NextTurn produces the navigator's next turn over the dialog so far. The
// driver's current code, when present, is included so suggestions build on
// it rather than restart.
func (s *Service) NextTurn(ctx context.Context, item study.Item, history []study.Message, driverCode string) (*Turn, error) {
	ctx = llm.WithPurpose(ctx, "pair-turn")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: navigatorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildTurnUserMessage(item, history, driverCode)},
		},
		Schema:      TurnSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("navigator turn: %w", err)
	}

	var out turnOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse navigator turn: %w", err),
		}
	}

	return &Turn{Reply: out.Reply, SuggestedCode: out.SuggestedCode}, nil
}
