package pair

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

func TestGenerateChallenge(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"title":"Bounded Worker Pool",
			"description":"Implement a worker pool with a fixed concurrency limit.",
			"starter_code":"func NewPool(n int) *Pool { return nil }"
		}`),
	})
	svc := NewService(mock, DefaultConfig())

	item, err := svc.GenerateChallenge(context.Background(), "concurrency", "# notes", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if item.Title != "Bounded Worker Pool" {
		t.Errorf("title = %q", item.Title)
	}
	if !strings.Contains(item.Body, "fixed concurrency limit") {
		t.Error("description missing from body")
	}
	if !strings.Contains(item.Body, "func NewPool") {
		t.Error("starter code missing from body")
	}
	if mock.Calls[0].Schema != ChallengeSchema {
		t.Error("challenge generation must be schema-constrained")
	}
}

func TestGenerateChallengeWithoutStarter(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"title":"t","description":"d","starter_code":""}`),
	})
	svc := NewService(mock, DefaultConfig())

	item, err := svc.GenerateChallenge(context.Background(), "t", "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(item.Body, "```") {
		t.Errorf("empty starter must not add a code fence: %q", item.Body)
	}
}

func TestNextTurn(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"reply":"Looks good, but what happens when the channel is closed?",
			"suggested_code":"for job := range jobs {\n\tgo run(job)\n}"
		}`),
	})
	svc := NewService(mock, DefaultConfig())

	history := []study.Message{
		study.NewMessage(study.RoleAssistant, "Let's start with the pool struct."),
		study.NewMessage(study.RoleUser, "Here is my first attempt."),
	}

	turn, err := svc.NextTurn(context.Background(),
		study.Item{Title: "Bounded Worker Pool", Body: "Implement a pool."},
		history, "type Pool struct{}")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if !strings.Contains(turn.Reply, "channel is closed") {
		t.Errorf("reply = %q", turn.Reply)
	}
	if !strings.Contains(turn.SuggestedCode, "range jobs") {
		t.Errorf("suggested code = %q", turn.SuggestedCode)
	}

	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "type Pool struct{}") {
		t.Error("driver code missing from prompt")
	}
	if !strings.Contains(prompt, "[driver] Here is my first attempt.") {
		t.Error("dialog missing from prompt")
	}
	if mock.Calls[0].Schema != TurnSchema {
		t.Error("turns must be schema-constrained")
	}
}

func TestNextTurnDropsNotices(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"reply":"ok","suggested_code":""}`),
	})
	svc := NewService(mock, DefaultConfig())

	history := []study.Message{
		study.NewNotice("The response could not be generated. Try again."),
		study.NewMessage(study.RoleUser, "hello"),
	}

	if _, err := svc.NextTurn(context.Background(), study.Item{Title: "t"}, history, ""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(mock.Calls[0].Messages[0].Content, "could not be generated") {
		t.Error("notice leaked into prompt")
	}
}

func TestNextTurnMalformed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`sure, try a mutex`),
	})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.NextTurn(context.Background(), study.Item{Title: "t"}, nil, "")
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
