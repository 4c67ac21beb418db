package popup

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/roasbeef/spotter/internal/reviewapi"
)

// keyedBackend blocks each call until the gate for its text is released.
type keyedBackend struct {
	// ignoreCancel makes calls finish on release even after their context
	// was cancelled.
	ignoreCancel bool

	summaryCalls atomic.Int64
	scoreCalls   atomic.Int64

	mu        sync.Mutex
	gates     map[string]chan struct{}
	cancelled int
}

func newKeyedBackend() *keyedBackend {
	return &keyedBackend{gates: make(map[string]chan struct{})}
}

func (k *keyedBackend) gate(text string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	g, ok := k.gates[text]
	if !ok {
		g = make(chan struct{})
		k.gates[text] = g
	}

	return g
}

func (k *keyedBackend) release(text string) {
	close(k.gate(text))
}

func (k *keyedBackend) cancelledCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.cancelled
}

func (k *keyedBackend) wait(ctx context.Context, text string) error {
	g := k.gate(text)
	if k.ignoreCancel {
		<-g
		return nil
	}

	select {
	case <-g:
		return nil
	case <-ctx.Done():
		k.mu.Lock()
		k.cancelled++
		k.mu.Unlock()
		return ctx.Err()
	}
}

func (k *keyedBackend) Summarize(ctx context.Context,
	text string) (reviewapi.SummaryResponse, error) {

	k.summaryCalls.Add(1)
	if err := k.wait(ctx, text); err != nil {
		return reviewapi.SummaryResponse{}, err
	}

	return reviewapi.SummaryResponse{Reply: "reply:" + text}, nil
}

func (k *keyedBackend) DetectAd(ctx context.Context,
	text string) (reviewapi.AdScoreResponse, error) {

	k.scoreCalls.Add(1)
	if err := k.wait(ctx, text); err != nil {
		return reviewapi.AdScoreResponse{}, err
	}

	return reviewapi.AdScoreResponse{
		ProbAd: reviewapi.NewProbability(0.42),
	}, nil
}
