// Package inflight de-duplicates concurrent backend work for identical input
// text. The first submission for a key starts the summary and ad-score calls;
// later submissions for the same key observe the same pending pair.
package inflight

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roasbeef/spotter/internal/future"
	"github.com/roasbeef/spotter/internal/reviewapi"
)

// Backend is the pair of calls made for every submission.
type Backend interface {
	// Summarize returns the AI generated reply for text.
	Summarize(ctx context.Context,
		text string) (reviewapi.SummaryResponse, error)

	// DetectAd returns the ad probability for text.
	DetectAd(ctx context.Context,
		text string) (reviewapi.AdScoreResponse, error)
}

// Pair is one registered set of pending operations for a key.
type Pair struct {
	// Key is the normalized input text.
	Key string

	// Generation identifies this pair among all pairs ever started by the
	// registry. Registry cleanup compares generations, never keys alone.
	Generation uint64

	// Summary resolves with the summary endpoint's response.
	Summary future.Future[reviewapi.SummaryResponse]

	// Score resolves with the ad-score endpoint's response.
	Score future.Future[reviewapi.AdScoreResponse]

	ctx    context.Context
	cancel context.CancelFunc

	// subscribers is guarded by Registry.mu.
	subscribers int
}

// Settled returns a channel closed once both operations completed.
func (p *Pair) Settled() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		<-p.Summary.Done()
		<-p.Score.Done()
		close(done)
	}()

	return done
}

// settled reports, without blocking, whether both operations completed.
func (p *Pair) settled() bool {
	for _, done := range []<-chan struct{}{p.Summary.Done(), p.Score.Done()} {
		select {
		case <-done:
		default:
			return false
		}
	}

	return true
}

// Lease is a subscription to a pair. The pair's operations are cancelled once
// every lease on it has been released.
type Lease struct {
	// Pair is the shared pending pair.
	Pair *Pair

	// Joined is true when the pair was already in flight and this lease
	// attached to it instead of starting new calls.
	Joined bool

	release func()
}

// Release drops the subscription. It is safe to call more than once.
func (l *Lease) Release() {
	l.release()
}

// Registry maps keys to their in-flight pair.
type Registry struct {
	backend Backend
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pairs   map[string]*Pair
	lastGen uint64

	dispatched atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(backend Backend, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Registry{
		backend: backend,
		log:     log.With("component", "inflight"),
		ctx:     ctx,
		cancel:  cancel,
		pairs:   make(map[string]*Pair),
	}
}

// Acquire returns a lease on the live pair for key, starting a new pair if
// none is registered or the registered one is already being cancelled.
func (r *Registry) Acquire(key string) *Lease {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := true
	p, ok := r.pairs[key]
	if !ok || p.ctx.Err() != nil {
		p = r.start(key)
		joined = false
	}
	p.subscribers++

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.unsubscribe(p)
		})
	}

	return &Lease{Pair: p, Joined: joined, release: release}
}

// start launches both operations for key and registers the pair. Must be
// called with mu held.
func (r *Registry) start(key string) *Pair {
	r.lastGen++
	ctx, cancel := context.WithCancel(r.ctx)

	p := &Pair{
		Key:        key,
		Generation: r.lastGen,
		ctx:        ctx,
		cancel:     cancel,
	}
	p.Summary = future.Go(ctx, func(
		ctx context.Context) (reviewapi.SummaryResponse, error) {

		return r.backend.Summarize(ctx, key)
	})
	p.Score = future.Go(ctx, func(
		ctx context.Context) (reviewapi.AdScoreResponse, error) {

		return r.backend.DetectAd(ctx, key)
	})

	r.pairs[key] = p
	r.dispatched.Add(1)

	r.log.Debug("Started backend pair",
		"generation", p.Generation, "key_len", len(key),
	)

	go r.removeWhenSettled(p)

	return p
}

// removeWhenSettled drops p from the registry after both operations finish,
// unless a newer pair replaced it in the meantime.
func (r *Registry) removeWhenSettled(p *Pair) {
	<-p.Settled()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.pairs[p.Key]; ok && cur.Generation == p.Generation {
		delete(r.pairs, p.Key)
	}
}

// unsubscribe drops one subscriber, cancelling the pair when none remain.
func (r *Registry) unsubscribe(p *Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.subscribers--
	if p.subscribers > 0 {
		return
	}

	if !p.settled() {
		r.log.Debug("Cancelling superseded backend pair",
			"generation", p.Generation,
		)
	}
	p.cancel()
}

// Len returns the number of registered pairs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pairs)
}

// Dispatched returns how many pairs have been started so far.
func (r *Registry) Dispatched() uint64 {
	return r.dispatched.Load()
}

// Close cancels every outstanding operation.
func (r *Registry) Close() {
	r.cancel()
}
