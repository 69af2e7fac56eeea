package interview

import (
	"github.com/dlemos/caderno/internal/interview"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/study"
)

// questionsReadyMsg is sent when question generation completes.
type questionsReadyMsg struct {
	Items []study.Item
	Err   error
}

// streamStartedMsg is sent when the interviewer's delivery stream is set up.
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

// evalDoneMsg is sent when the per-answer evaluation settles.
type evalDoneMsg struct {
	Epoch uint64
	Index int
	Eval  *study.Evaluation
	Err   error
}

// transcribedMsg carries the text of a transcribed audio answer.
type transcribedMsg struct {
	Text string
	Err  error
}

// finalDoneMsg is sent when the end-of-interview verdict settles.
type finalDoneMsg struct {
	Verdict *interview.FinalVerdict
	Err     error
}
