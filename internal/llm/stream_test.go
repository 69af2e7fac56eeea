package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStream_DeliversFragmentsInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage("The derivative of x squared is two x."), Usage: Usage{InputTokens: 12, OutputTokens: 9, TotalTokens: 21}},
	)

	stream, err := mock.GenerateStream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "explain"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got strings.Builder
	for {
		frag, ok := stream.Recv()
		if !ok {
			break
		}
		got.WriteString(frag)
	}

	if got.String() != "The derivative of x squared is two x." {
		t.Fatalf("unexpected concatenation: %q", got.String())
	}
	if stream.Text() != got.String() {
		t.Fatalf("Text() disagrees with delivered fragments: %q", stream.Text())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("unexpected terminal error: %v", err)
	}
	if stream.Usage().TotalTokens != 21 {
		t.Fatalf("expected 21 total tokens, got %d", stream.Usage().TotalTokens)
	}
}

func TestStream_CancelStopsDelivery(t *testing.T) {
	long := strings.Repeat("fragment ", 500)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(long)},
	)

	stream, err := mock.GenerateStream(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Take one fragment, then cancel.
	if _, ok := stream.Recv(); !ok {
		t.Fatal("expected at least one fragment")
	}
	stream.Cancel()

	// Drain whatever was buffered before the cancel took effect.
	for {
		if _, ok := stream.Recv(); !ok {
			break
		}
	}

	if !errors.Is(stream.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", stream.Err())
	}
	if len(stream.Text()) >= len(long) {
		t.Fatal("expected delivery to stop before the full text")
	}
}

func TestStream_SetupErrorSurfacesImmediately(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)

	_, err := mock.GenerateStream(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
}

func TestStream_HookAfterFinishFiresImmediately(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newStream(cancel)
	s.finish(Usage{InputTokens: 4, OutputTokens: 2, TotalTokens: 6}, nil)

	// A hook registered after the producer already finished must still
	// observe the terminal state, or middleware silently loses the event.
	var got Usage
	fired := false
	s.setOnDone(func(st *Stream) {
		fired = true
		got = st.Usage()
	})

	if !fired {
		t.Fatal("hook never fired for an already-finished stream")
	}
	if got.TotalTokens != 6 {
		t.Fatalf("hook saw usage %+v", got)
	}
}

func TestRetry_StreamSetupRetriesTransient(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: json.RawMessage("recovered")},
	)
	p := WithRetry(mock, retryConfig())

	streamer, ok := p.(Streamer)
	if !ok {
		t.Fatal("retry provider should implement Streamer")
	}

	stream, err := streamer.GenerateStream(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for {
		if _, ok := stream.Recv(); !ok {
			break
		}
	}
	if stream.Text() != "recovered" {
		t.Fatalf("unexpected text: %q", stream.Text())
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}
