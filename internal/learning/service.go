package learning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

// Verdict is the evaluator's classification of a learner answer.
type Verdict string

const (
	VerdictAdvance         Verdict = "advance"
	VerdictIncreaseSupport Verdict = "increase_support"
	VerdictContinue        Verdict = "continue"
)

// Service drives Learning Mode: concept extraction, Socratic turns, and
// answer evaluation.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a Learning Mode service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type conceptsOutput struct {
	Concepts []struct {
		Title      string   `json:"title"`
		Summary    string   `json:"summary"`
		Difficulty string   `json:"difficulty"`
		Problems   []string `json:"problems"`
	} `json:"concepts"`
}

// ExtractConcepts builds the session item list from a note. Markdown notes
// travel as prompt text; PDFs as a binary attachment.
func (s *Service) ExtractConcepts(ctx context.Context, noteTitle string, noteText string, attachment *llm.Attachment) ([]study.Item, error) {
	ctx = llm.WithPurpose(ctx, "concept-extract")

	req := llm.Request{
		System: extractSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExtractUserMessage(noteTitle, noteText, s.cfg)},
		},
		Schema:      ConceptsSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	if attachment != nil {
		req.Attachments = []llm.Attachment{*attachment}
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("concept extraction: %w", err)
	}

	var out conceptsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse concepts response: %w", err)
	}
	if len(out.Concepts) == 0 {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("no concepts extracted"),
		}
	}

	items := make([]study.Item, 0, len(out.Concepts))
	for i, c := range out.Concepts {
		if i >= s.cfg.MaxConcepts {
			break
		}
		item := study.Item{
			Title:      c.Title,
			Body:       c.Summary,
			Difficulty: c.Difficulty,
		}
		for j, p := range c.Problems {
			if j >= s.cfg.ProblemsPerConcept {
				break
			}
			item.SubItems = append(item.SubItems, study.SubItem{
				ID:    fmt.Sprintf("p%d", j+1),
				Title: p,
			})
		}
		items = append(items, item)
	}
	return items, nil
}

// Intro streams the opening tutor message for a concept.
func (s *Service) Intro(ctx context.Context, item study.Item) (*llm.Stream, error) {
	ctx = llm.WithPurpose(ctx, "learning-intro")

	return llm.GenerateStream(ctx, s.provider, llm.Request{
		System: tutorSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildIntroUserMessage(item, item.SupportLevel)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}

// Reply streams the next tutor turn given the visible dialog.
func (s *Service) Reply(ctx context.Context, item study.Item, history []study.Message) (*llm.Stream, error) {
	ctx = llm.WithPurpose(ctx, "learning-reply")

	msgs := []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf("Concept: %s\n%s", item.Title, supportInstructions(item.SupportLevel))},
	}
	msgs = append(msgs, toLLMMessages(history)...)

	return llm.GenerateStream(ctx, s.provider, llm.Request{
		System:      tutorSystemPrompt,
		Messages:    msgs,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}

type verdictOutput struct {
	Action   string `json:"action"`
	Feedback string `json:"feedback"`
}

// Evaluate classifies the latest answer. A malformed or unvalidatable
// classification surfaces as *llm.ErrInvalidResponse; the caller applies
// the least disruptive transition and shows an inline notice, so it stays
// distinguishable from a deliberate continue verdict.
func (s *Service) Evaluate(ctx context.Context, item study.Item, history []study.Message, answer string) (Verdict, string, error) {
	ctx = llm.WithPurpose(ctx, "learning-eval")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: evalSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildEvalUserMessage(item, history, answer)},
		},
		Schema:      VerdictSchema,
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		return "", "", fmt.Errorf("answer evaluation: %w", err)
	}

	var out verdictOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", "", &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse verdict: %w", err),
		}
	}

	switch Verdict(out.Action) {
	case VerdictAdvance, VerdictIncreaseSupport, VerdictContinue:
		return Verdict(out.Action), out.Feedback, nil
	default:
		return "", "", &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("unknown verdict action %q", out.Action),
		}
	}
}

// toLLMMessages converts a visible history into provider messages,
// dropping presentation-only notices.
func toLLMMessages(history []study.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Type == study.TypeNotice {
			continue
		}
		role := llm.RoleUser
		if m.Role == study.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
