// Package fetch suppresses stale responses from overlapping data loads.
//
// Each adapter key (for example "losses") has a monotonic generation counter.
// A fetch takes a token from Begin before it starts and must Commit the token
// before its result is applied; Commit fails with a StaleFetchError when a
// newer fetch for the same key began in the meantime. Run wraps the pattern
// and also cancels the superseded fetch's context.
package fetch

import (
	"context"
	"sync"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/event"
	"github.com/Iron-Ham/flightdash/internal/logging"
)

// Token identifies one fetch attempt.
type Token struct {
	Key        string
	Generation uint64
}

type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// Tracker issues generation tokens per key. It is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	gens     map[string]uint64
	inflight map[string]inflight
	bus      *event.Bus
	log      *logging.Logger
}

// NewTracker creates a Tracker. Discards are published on bus when it is
// non-nil.
func NewTracker(bus *event.Bus, logger *logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Tracker{
		gens:     make(map[string]uint64),
		inflight: make(map[string]inflight),
		bus:      bus,
		log:      logger,
	}
}

// Begin starts a new generation for key.
func (t *Tracker) Begin(key string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gens[key]++
	return Token{Key: key, Generation: t.gens[key]}
}

// Latest returns the newest generation issued for key, or 0.
func (t *Tracker) Latest(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gens[key]
}

// IsCurrent reports whether tok is still the newest generation for its key.
func (t *Tracker) IsCurrent(tok Token) bool {
	return t.Latest(tok.Key) == tok.Generation
}

// Commit returns nil when tok is current. Otherwise it returns a
// *errors.StaleFetchError and the caller must drop its result.
func (t *Tracker) Commit(tok Token) error {
	latest := t.Latest(tok.Key)
	if latest == tok.Generation {
		return nil
	}

	t.log.Debug("discarding stale fetch", "key", tok.Key, "generation", tok.Generation, "latest", latest)
	if t.bus != nil {
		t.bus.Publish(event.NewFetchDiscardedEvent(tok.Key, tok.Generation, latest))
	}
	return errors.NewStaleFetchError(tok.Key, tok.Generation, latest)
}

// Cancel aborts the in-flight Run for key, if any. The aborted run's result
// is treated as stale.
func (t *Tracker) Cancel(key string) {
	t.mu.Lock()
	f, ok := t.inflight[key]
	if ok {
		delete(t.inflight, key)
		t.gens[key]++
	}
	t.mu.Unlock()

	if ok {
		f.cancel()
	}
}

// CancelAll aborts every in-flight Run.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	keys := make([]string, 0, len(t.inflight))
	for k := range t.inflight {
		keys = append(keys, k)
	}
	t.mu.Unlock()

	for _, k := range keys {
		t.Cancel(k)
	}
}

// start begins a generation and registers its cancel func, cancelling the
// previous run for the same key.
func (t *Tracker) start(parent context.Context, key string) (Token, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	t.gens[key]++
	tok := Token{Key: key, Generation: t.gens[key]}
	prev, hadPrev := t.inflight[key]
	t.inflight[key] = inflight{generation: tok.Generation, cancel: cancel}
	t.mu.Unlock()

	if hadPrev {
		prev.cancel()
	}
	return tok, ctx
}

// finish releases tok's context if it is still registered.
func (t *Tracker) finish(tok Token) {
	t.mu.Lock()
	f, ok := t.inflight[tok.Key]
	if ok && f.generation == tok.Generation {
		delete(t.inflight, tok.Key)
	}
	t.mu.Unlock()

	if ok && f.generation == tok.Generation {
		f.cancel()
	}
}

// Run executes fn under a fresh generation for key. Starting a newer Run for
// the same key cancels this run's context. If a newer generation exists when
// fn returns, the result is discarded and a *errors.StaleFetchError is
// returned regardless of fn's own outcome.
func Run[T any](ctx context.Context, t *Tracker, key string, fn func(context.Context) (T, error)) (T, error) {
	tok, runCtx := t.start(ctx, key)
	defer t.finish(tok)

	val, err := fn(runCtx)
	if staleErr := t.Commit(tok); staleErr != nil {
		var zero T
		return zero, staleErr
	}
	return val, err
}
