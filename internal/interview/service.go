// Package interview drives Interview Mode: question generation, the
// interviewer dialog, per-answer evaluations, and the final verdict.
package interview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

// Config controls Interview Mode generation.
type Config struct {
	// QuestionCount is how many questions one session carries.
	QuestionCount int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns Interview Mode defaults.
func DefaultConfig() Config {
	return Config{
		QuestionCount: 5,
		MaxTokens:     2048,
		Temperature:   0.7,
	}
}

// FinalVerdict is the end-of-session summary.
type FinalVerdict struct {
	Verdict study.Score
	Summary string
}

// Service generates and grades mock interviews.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an Interview Mode service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type questionsOutput struct {
	Questions []struct {
		Question   string `json:"question"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	} `json:"questions"`
}

// GenerateQuestions builds the session item list from a note.
func (s *Service) GenerateQuestions(ctx context.Context, noteTitle, noteText string, attachment *llm.Attachment) ([]study.Item, error) {
	ctx = llm.WithPurpose(ctx, "interview-questions")

	req := llm.Request{
		System: questionsSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuestionsUserMessage(noteTitle, noteText, s.cfg.QuestionCount)},
		},
		Schema:      QuestionsSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	if attachment != nil {
		req.Attachments = []llm.Attachment{*attachment}
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	var out questionsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse questions response: %w", err)
	}
	if len(out.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("no questions generated"),
		}
	}

	items := make([]study.Item, 0, len(out.Questions))
	for i, q := range out.Questions {
		if i >= s.cfg.QuestionCount {
			break
		}
		items = append(items, study.Item{
			Title:      q.Question,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
	}
	return items, nil
}

// Ask streams the interviewer's delivery of the current question.
func (s *Service) Ask(ctx context.Context, item study.Item) (*llm.Stream, error) {
	ctx = llm.WithPurpose(ctx, "interview-ask")

	return llm.GenerateStream(ctx, s.provider, llm.Request{
		System: interviewerSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAskUserMessage(item)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}

type evaluationOutput struct {
	Score      string `json:"score"`
	Dimensions struct {
		Correctness int `json:"correctness"`
		Depth       int `json:"depth"`
		Clarity     int `json:"clarity"`
	} `json:"dimensions"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Evaluate grades one answer into a structured Evaluation. A malformed
// response surfaces as *llm.ErrInvalidResponse; the caller keeps the item
// un-evaluated and shows an inline notice.
func (s *Service) Evaluate(ctx context.Context, item study.Item, history []study.Message, answer string) (*study.Evaluation, error) {
	ctx = llm.WithPurpose(ctx, "interview-eval")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: evalSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildEvalUserMessage(item, history, answer)},
		},
		Schema:      EvaluationSchema,
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("answer evaluation: %w", err)
	}

	var out evaluationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse evaluation: %w", err),
		}
	}

	return &study.Evaluation{
		Score: study.Score(out.Score),
		Dimensions: []study.Dimension{
			{Name: "correctness", Score: out.Dimensions.Correctness},
			{Name: "depth", Score: out.Dimensions.Depth},
			{Name: "clarity", Score: out.Dimensions.Clarity},
		},
		Feedback:     out.Feedback,
		Strengths:    out.Strengths,
		Improvements: out.Improvements,
	}, nil
}

type finalOutput struct {
	Verdict string `json:"verdict"`
	Summary string `json:"summary"`
}

// Final produces the overall verdict once the session completes.
func (s *Service) Final(ctx context.Context, items []study.Item) (*FinalVerdict, error) {
	ctx = llm.WithPurpose(ctx, "interview-final")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: finalSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFinalUserMessage(items)},
		},
		Schema:      FinalVerdictSchema,
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("final verdict: %w", err)
	}

	var out finalOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{
			Content: resp.Content,
			Err:     fmt.Errorf("parse final verdict: %w", err),
		}
	}

	return &FinalVerdict{
		Verdict: study.Score(out.Verdict),
		Summary: out.Summary,
	}, nil
}
