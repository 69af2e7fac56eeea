package interview

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

func TestGenerateQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"questions":[
			{"question":"What is a goroutine?","category":"concurrency","difficulty":"junior"},
			{"question":"Design a rate limiter with channels.","category":"concurrency","difficulty":"senior"}
		]}`),
	})
	svc := NewService(mock, DefaultConfig())

	items, err := svc.GenerateQuestions(context.Background(), "concurrency", "# notes", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Difficulty != "senior" {
		t.Errorf("difficulty = %q", items[1].Difficulty)
	}
	if mock.Calls[0].Schema != QuestionsSchema {
		t.Error("question generation must be schema-constrained")
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "exactly 5") {
		t.Error("question count missing from prompt")
	}
}

func TestGenerateQuestionsTruncatesToConfig(t *testing.T) {
	var qs []string
	for i := 0; i < 8; i++ {
		qs = append(qs, `{"question":"q","category":"c","difficulty":"mid"}`)
	}
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"questions":[` + strings.Join(qs, ",") + `]}`),
	})

	cfg := DefaultConfig()
	cfg.QuestionCount = 3
	svc := NewService(mock, cfg)

	items, err := svc.GenerateQuestions(context.Background(), "t", "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
}

func TestEvaluate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"score":"hire",
			"dimensions":{"correctness":3,"depth":2,"clarity":4},
			"feedback":"Accurate but shallow on scheduling.",
			"strengths":["clear definitions"],
			"improvements":["discuss the scheduler"]
		}`),
	})
	svc := NewService(mock, DefaultConfig())

	eval, err := svc.Evaluate(context.Background(),
		study.Item{Title: "What is a goroutine?", Difficulty: "junior"},
		[]study.Message{study.NewMessage(study.RoleAssistant, "Tell me about goroutines.")},
		"A lightweight thread managed by the runtime.")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if eval.Score != study.ScoreHire {
		t.Errorf("score = %q", eval.Score)
	}
	if len(eval.Dimensions) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(eval.Dimensions))
	}
	if eval.Dimensions[2].Name != "clarity" || eval.Dimensions[2].Score != 4 {
		t.Errorf("unexpected clarity dimension: %+v", eval.Dimensions[2])
	}
	if len(eval.Strengths) != 1 || len(eval.Improvements) != 1 {
		t.Error("strengths/improvements lost")
	}

	if !strings.Contains(mock.Calls[0].Messages[0].Content, "A lightweight thread") {
		t.Error("answer missing from prompt")
	}
}

func TestEvaluateMalformed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`hire, I guess`),
	})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.Evaluate(context.Background(), study.Item{Title: "q"}, nil, "a")
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestFinalVerdict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"verdict":"mixed","summary":"Strong fundamentals, weak system design."}`),
	})
	svc := NewService(mock, DefaultConfig())

	items := []study.Item{
		{Title: "q1", Evaluation: &study.Evaluation{
			Score:      study.ScoreHire,
			Dimensions: []study.Dimension{{Name: "correctness", Score: 3}},
		}},
		{Title: "q2"}, // unanswered
	}

	verdict, err := svc.Final(context.Background(), items)
	if err != nil {
		t.Fatalf("final: %v", err)
	}
	if verdict.Verdict != study.ScoreMixed {
		t.Errorf("verdict = %q", verdict.Verdict)
	}

	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "score: hire") || !strings.Contains(prompt, "(not answered)") {
		t.Errorf("per-question results missing from prompt:\n%s", prompt)
	}
}
