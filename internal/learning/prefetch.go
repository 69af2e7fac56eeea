package learning

import (
	"context"
	"sync"

	"github.com/dlemos/caderno/internal/study"
)

// PrefetchResult is a pre-generated intro for an upcoming concept.
type PrefetchResult struct {
	Index    int
	Messages []study.Message
	Err      error
}

// Prefetcher opportunistically pre-generates intros for upcoming concepts
// so navigation feels instant. At most cfg.PrefetchAhead items past the
// cursor are in flight, tracked in a set so the same index is never
// requested twice. Results are merged through Session.SeedPrefetched,
// which drops them if the item gained content in the meantime.
type Prefetcher struct {
	svc   *Service
	ahead int

	mu       sync.Mutex
	inflight map[int]bool
	done     map[int]bool
	results  chan PrefetchResult
}

// NewPrefetcher creates a Prefetcher delivering results on a buffered
// channel the event loop drains.
func NewPrefetcher(svc *Service) *Prefetcher {
	ahead := svc.cfg.PrefetchAhead
	if ahead < 1 {
		ahead = 1
	}
	return &Prefetcher{
		svc:      svc,
		ahead:    ahead,
		inflight: make(map[int]bool),
		done:     make(map[int]bool),
		results:  make(chan PrefetchResult, ahead*2),
	}
}

// Results delivers completed pre-generations.
func (p *Prefetcher) Results() <-chan PrefetchResult {
	return p.results
}

// Kick schedules pre-generation for up to ahead items past the session
// cursor. Call it from the event loop after every navigation; items that
// already have stored history, are already done, or are already in flight
// are skipped.
func (p *Prefetcher) Kick(ctx context.Context, sess *study.Session) {
	current := sess.CurrentIndex()
	for idx := current + 1; idx <= current+p.ahead && idx < sess.ItemCount(); idx++ {
		if len(sess.StoredHistory(idx, "")) > 0 {
			continue
		}
		item := sess.Item(idx)
		if item == nil {
			continue
		}

		p.mu.Lock()
		if p.inflight[idx] || p.done[idx] {
			p.mu.Unlock()
			continue
		}
		p.inflight[idx] = true
		p.mu.Unlock()

		go p.generate(ctx, idx, *item)
	}
}

func (p *Prefetcher) generate(ctx context.Context, idx int, item study.Item) {
	defer func() {
		p.mu.Lock()
		delete(p.inflight, idx)
		p.mu.Unlock()
	}()

	stream, err := p.svc.Intro(ctx, item)
	if err != nil {
		p.deliver(PrefetchResult{Index: idx, Err: err})
		return
	}
	for {
		if _, ok := stream.Recv(); !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		p.deliver(PrefetchResult{Index: idx, Err: err})
		return
	}

	msg := study.NewMessage(study.RoleAssistant, stream.Text())
	msg.Type = study.TypeIntro
	p.deliver(PrefetchResult{Index: idx, Messages: []study.Message{msg}})
}

// deliver hands a result to the event loop. Only a delivered result marks
// the index done; a dropped one stays eligible for the next Kick.
func (p *Prefetcher) deliver(res PrefetchResult) {
	select {
	case p.results <- res:
		p.mu.Lock()
		p.done[res.Index] = true
		p.mu.Unlock()
	default:
		// Drop when the loop is not draining; pre-fetches are best effort.
	}
}
