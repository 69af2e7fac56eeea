package learning

import (
	"github.com/dlemos/caderno/internal/learning"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

// conceptsReadyMsg is sent when concept extraction completes.
type conceptsReadyMsg struct {
	Items []study.Item
	Err   error
}

// streamStartedMsg is sent when a generation stream has been set up.
type streamStartedMsg struct {
	Epoch  uint64
	Stream *llm.Stream
}

// streamFragMsg carries one fragment of an in-flight stream.
type streamFragMsg struct {
	Epoch uint64
	Frag  string
}

// streamDoneMsg is sent when a stream settles, success or error.
type streamDoneMsg struct {
	Epoch uint64
	Text  string
	Err   error
}

// streamFailedMsg is sent when stream setup itself fails.
type streamFailedMsg struct {
	Epoch uint64
	Err   error
}

// evalDoneMsg is sent when the evaluator settles on a verdict.
type evalDoneMsg struct {
	Epoch    uint64
	Verdict  learning.Verdict
	Feedback string
	Err      error
}

// prefetchMsg delivers one background pre-generation result.
type prefetchMsg struct {
	Result learning.PrefetchResult
}
