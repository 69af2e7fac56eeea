package learning

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

func TestExtractConcepts(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"concepts":[
			{"title":"Goroutines","summary":"Lightweight threads.","difficulty":"basic","problems":["spawn and wait"]},
			{"title":"Channels","summary":"Typed conduits.","difficulty":"intermediate","problems":["fan-in","worker pool"]}
		]}`),
	})
	svc := NewService(mock, DefaultConfig())

	items, err := svc.ExtractConcepts(context.Background(), "concurrency", "# Concurrency\n...", nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Goroutines" || items[0].Difficulty != "basic" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if len(items[1].SubItems) != 2 || items[1].SubItems[0].ID != "p1" {
		t.Errorf("unexpected sub-items: %+v", items[1].SubItems)
	}

	// The note text reached the prompt.
	if len(mock.Calls) != 1 || !strings.Contains(mock.Calls[0].Messages[0].Content, "# Concurrency") {
		t.Error("note content missing from prompt")
	}
	if mock.Calls[0].Schema != ConceptsSchema {
		t.Error("extraction must be schema-constrained")
	}
}

func TestExtractConceptsEmptyListIsInvalid(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"concepts":[]}`),
	})
	svc := NewService(mock, DefaultConfig())

	_, err := svc.ExtractConcepts(context.Background(), "t", "x", nil)
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestExtractConceptsPDFAttachment(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"concepts":[{"title":"B-Trees","summary":"s","difficulty":"advanced","problems":[]}]}`),
	})
	svc := NewService(mock, DefaultConfig())

	att := &llm.Attachment{MIME: "application/pdf", Data: []byte("%PDF-1.4")}
	if _, err := svc.ExtractConcepts(context.Background(), "databases", "", att); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(mock.Calls[0].Attachments) != 1 || mock.Calls[0].Attachments[0].MIME != "application/pdf" {
		t.Error("attachment not forwarded to provider")
	}
}

func TestReplyStreamsAndDropsNotices(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage("Good. Now, what closes a channel?"),
	})
	svc := NewService(mock, DefaultConfig())

	history := []study.Message{
		study.NewMessage(study.RoleAssistant, "What is a channel?"),
		study.NewNotice("generation failed: timeout"),
		study.NewMessage(study.RoleUser, "a typed conduit"),
	}
	item := study.Item{Title: "Channels", SupportLevel: 2}

	stream, err := svc.Reply(context.Background(), item, history)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	for {
		if _, ok := stream.Recv(); !ok {
			break
		}
	}
	if stream.Text() != "Good. Now, what closes a channel?" {
		t.Fatalf("unexpected text: %q", stream.Text())
	}

	// Notice excluded; context preamble + 2 dialog turns remain.
	msgs := mock.Calls[0].Messages
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for _, m := range msgs {
		if strings.Contains(m.Content, "generation failed") {
			t.Error("notice leaked into the prompt")
		}
	}
	if !strings.Contains(msgs[0].Content, "Support level 2") {
		t.Errorf("support instructions missing: %q", msgs[0].Content)
	}
}

func TestEvaluateVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Verdict
	}{
		{"advance", `{"action":"advance","feedback":"well understood"}`, VerdictAdvance},
		{"increase support", `{"action":"increase_support","feedback":"let's slow down"}`, VerdictIncreaseSupport},
		{"continue", `{"action":"continue","feedback":"keep going"}`, VerdictContinue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
			svc := NewService(mock, DefaultConfig())

			verdict, feedback, err := svc.Evaluate(context.Background(),
				study.Item{Title: "Channels", SupportLevel: 1}, nil, "an answer")
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if verdict != tt.want {
				t.Errorf("verdict = %q, want %q", verdict, tt.want)
			}
			if feedback == "" {
				t.Error("expected feedback")
			}
		})
	}
}

func TestEvaluateMalformedSurfacesAsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `advance, definitely`},
		{"unknown action", `{"action":"promote","feedback":"?"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.content)})
			svc := NewService(mock, DefaultConfig())

			_, _, err := svc.Evaluate(context.Background(), study.Item{Title: "x"}, nil, "a")
			var inv *llm.ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestSeedMessage(t *testing.T) {
	m := SeedMessage("Reverse a linked list")
	if m.Role != study.RoleUser {
		t.Fatalf("expected user role, got %q", m.Role)
	}
	if !strings.Contains(m.Content, "Reverse a linked list") {
		t.Fatalf("problem title missing from seed: %q", m.Content)
	}
}

func TestPrefetcherFillsUpcomingItems(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("Channels connect goroutines.")},
		llm.MockResponse{Content: json.RawMessage("Select multiplexes channels.")},
	)
	svc := NewService(mock, DefaultConfig())
	pf := NewPrefetcher(svc)

	sess := study.NewSession(study.ModeLearning, "n.md", "n", []study.Item{
		{Title: "goroutines"}, {Title: "channels"}, {Title: "select"},
	})

	pf.Kick(context.Background(), sess)

	for i := 0; i < 2; i++ {
		select {
		case res := <-pf.Results():
			if res.Err != nil {
				t.Fatalf("prefetch error: %v", res.Err)
			}
			merged, live := sess.SeedPrefetched(res.Index, res.Messages)
			if !merged || live {
				t.Errorf("result %d: merged=%v live=%v", res.Index, merged, live)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("prefetch result never arrived")
		}
	}

	// Both upcoming items now have stored intros; a second kick is a no-op.
	pf.Kick(context.Background(), sess)
	select {
	case res := <-pf.Results():
		t.Fatalf("unexpected duplicate prefetch: %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 provider calls, got %d", mock.CallCount())
	}

	if h := sess.StoredHistory(1, ""); len(h) != 1 || h[0].Type != study.TypeIntro {
		t.Fatalf("item 1 intro missing: %+v", h)
	}
}

func TestPrefetcherSkipsInflight(t *testing.T) {
	// Empty mock queue: calls fail, but the in-flight set must still
	// prevent duplicates for the same index.
	mock := llm.NewMockProvider()
	svc := NewService(mock, DefaultConfig())
	pf := NewPrefetcher(svc)

	sess := study.NewSession(study.ModeLearning, "n.md", "n", []study.Item{
		{Title: "a"}, {Title: "b"},
	})

	pf.Kick(context.Background(), sess)
	select {
	case res := <-pf.Results():
		if res.Err == nil {
			t.Fatal("expected error result")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("result never arrived")
	}
}
