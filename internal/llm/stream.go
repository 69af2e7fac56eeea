package llm

import (
	"context"
	"strings"
	"sync"
)

// Stream delivers incremental text fragments from a single generation call.
// Fragments arrive in generation order; their concatenation is the full
// response text. Cancellation is explicit: Cancel stops the underlying
// request and the producer checks for it before every yield, so no fragment
// is delivered after Cancel returns control to the consumer loop.
type Stream struct {
	frags  chan string
	cancel context.CancelFunc

	mu       sync.Mutex
	text     strings.Builder
	usage    Usage
	err      error
	finished bool
	onDone   func(*Stream)
}

// newStream creates a Stream whose producer goroutine is bound to cancel.
func newStream(cancel context.CancelFunc) *Stream {
	return &Stream{
		frags:  make(chan string, 8),
		cancel: cancel,
	}
}

// emit delivers one fragment to the consumer. Returns false when the stream
// context is done, signalling the producer to stop.
func (s *Stream) emit(ctx context.Context, frag string) bool {
	if frag == "" {
		return true
	}
	s.mu.Lock()
	s.text.WriteString(frag)
	s.mu.Unlock()

	select {
	case s.frags <- frag:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish records the terminal state and closes the fragment channel.
// Must be called exactly once by the producer.
func (s *Stream) finish(usage Usage, err error) {
	s.mu.Lock()
	s.usage = usage
	s.err = err
	s.finished = true
	done := s.onDone
	s.mu.Unlock()
	close(s.frags)
	if done != nil {
		done(s)
	}
}

// setOnDone registers a hook invoked once after the stream finishes.
// Used by middleware to observe the terminal state. A hook registered
// after the stream has already finished fires immediately.
func (s *Stream) setOnDone(fn func(*Stream)) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		fn(s)
		return
	}
	s.onDone = fn
	s.mu.Unlock()
}

// Recv blocks for the next fragment. ok is false once the stream has
// finished (successfully, with an error, or via Cancel); check Err then.
func (s *Stream) Recv() (frag string, ok bool) {
	frag, ok = <-s.frags
	return frag, ok
}

// Text returns the concatenation of all fragments delivered so far.
func (s *Stream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Err returns the terminal error, if any. Only meaningful after Recv has
// reported ok=false. A cancelled stream reports context.Canceled.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Usage reports token consumption, when the provider supplies it.
func (s *Stream) Usage() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// Cancel aborts the underlying request. Fragments already delivered remain
// valid; Recv drains any buffered fragments and then reports ok=false.
func (s *Stream) Cancel() {
	s.cancel()
}

// GenerateStream runs req on p, streaming when the provider supports it and
// falling back to a single-fragment stream over a blocking Generate call
// otherwise.
func GenerateStream(ctx context.Context, p Provider, req Request) (*Stream, error) {
	if s, ok := p.(Streamer); ok {
		return s.GenerateStream(ctx, req)
	}

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := newStream(cancel)
	go func() {
		if !out.emit(ctx, string(resp.Content)) {
			out.finish(resp.Usage, ctx.Err())
			return
		}
		out.finish(resp.Usage, nil)
	}()
	return out, nil
}
