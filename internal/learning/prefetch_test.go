package learning

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

func prefetchSession(n int) *study.Session {
	items := make([]study.Item, n)
	for i := range items {
		items[i] = study.Item{Title: "Concept", State: study.StateUninitialized}
	}
	return study.NewSession(study.ModeLearning, "go/x.md", "x", items)
}

func drainResult(t *testing.T, p *Prefetcher) PrefetchResult {
	t.Helper()
	select {
	case res := <-p.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for prefetch result")
		return PrefetchResult{}
	}
}

func TestPrefetchDeliversUpcomingIntros(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("Intro for the second concept.")},
		llm.MockResponse{Content: json.RawMessage("Intro for the third concept.")},
	)
	cfg := DefaultConfig()
	cfg.PrefetchAhead = 2
	p := NewPrefetcher(NewService(mock, cfg))

	sess := prefetchSession(4)
	p.Kick(context.Background(), sess)

	got := map[int]string{}
	for i := 0; i < 2; i++ {
		res := drainResult(t, p)
		if res.Err != nil {
			t.Fatalf("prefetch %d failed: %v", res.Index, res.Err)
		}
		if len(res.Messages) != 1 || res.Messages[0].Type != study.TypeIntro {
			t.Fatalf("unexpected messages for %d: %+v", res.Index, res.Messages)
		}
		got[res.Index] = res.Messages[0].Content
	}

	// Items 1 and 2 are the two past the cursor; item 3 stays untouched.
	if _, ok := got[1]; !ok {
		t.Error("index 1 not prefetched")
	}
	if _, ok := got[2]; !ok {
		t.Error("index 2 not prefetched")
	}
	if len(mock.Calls) != 2 {
		t.Errorf("provider calls = %d, want 2", len(mock.Calls))
	}
}

func TestPrefetchSkipsSeededAndDoneItems(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("one")},
	)
	cfg := DefaultConfig()
	cfg.PrefetchAhead = 1
	p := NewPrefetcher(NewService(mock, cfg))

	sess := prefetchSession(3)
	p.Kick(context.Background(), sess)

	res := drainResult(t, p)
	if res.Index != 1 || res.Err != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if merged, _ := sess.SeedPrefetched(res.Index, res.Messages); !merged {
		t.Fatal("seed rejected")
	}

	// A second kick finds index 1 already stored and requests nothing new.
	p.Kick(context.Background(), sess)
	select {
	case res := <-p.Results():
		t.Fatalf("unexpected extra result: %+v", res)
	case <-time.After(100 * time.Millisecond):
	}
	if len(mock.Calls) != 1 {
		t.Errorf("provider calls = %d, want 1", len(mock.Calls))
	}
}

func TestPrefetchDroppedResultIsRetried(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("first attempt")},
		llm.MockResponse{Content: json.RawMessage("second attempt")},
	)
	cfg := DefaultConfig()
	cfg.PrefetchAhead = 1
	p := NewPrefetcher(NewService(mock, cfg))

	// Fill the buffer so the next delivery has nowhere to go.
	for i := 0; i < cap(p.results); i++ {
		p.results <- PrefetchResult{Index: 99}
	}
	p.generate(context.Background(), 1, study.Item{Title: "Concept"})

	p.mu.Lock()
	done := p.done[1]
	p.mu.Unlock()
	if done {
		t.Fatal("dropped result marked done")
	}

	// Drain the filler; a fresh kick requests index 1 again.
	for i := 0; i < cap(p.results); i++ {
		<-p.results
	}
	sess := prefetchSession(2)
	p.Kick(context.Background(), sess)
	res := drainResult(t, p)
	if res.Index != 1 || res.Err != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(mock.Calls) != 2 {
		t.Errorf("provider calls = %d, want 2", len(mock.Calls))
	}
}

func TestPrefetchErrorIsReported(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
	)
	cfg := DefaultConfig()
	cfg.PrefetchAhead = 1
	p := NewPrefetcher(NewService(mock, cfg))

	sess := prefetchSession(2)
	p.Kick(context.Background(), sess)

	res := drainResult(t, p)
	if res.Index != 1 || res.Err == nil {
		t.Fatalf("expected error result for index 1, got %+v", res)
	}
}
