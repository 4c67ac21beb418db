package popup

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/respcache"
	"github.com/roasbeef/spotter/internal/reviewapi"
	"github.com/roasbeef/spotter/internal/score"
)

// Phase is the controller's position in the submission state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseCacheHit
	PhaseFetching
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseCacheHit:
		return "cache_hit"
	case PhaseFetching:
		return "fetching"
	default:
		return "unknown"
	}
}

// Outcome is how a submission left the Validating phase.
type Outcome int

const (
	// OutcomeRejected means the input was empty or placeholder content.
	OutcomeRejected Outcome = iota

	// OutcomeCacheHit means a fresh cache entry was rendered.
	OutcomeCacheHit

	// OutcomeFetching means backend calls were dispatched or joined.
	OutcomeFetching
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeCacheHit:
		return "cache_hit"
	case OutcomeFetching:
		return "fetching"
	default:
		return "unknown"
	}
}

// Display is the result area of the popup. Methods may be called from
// background goroutines.
type Display interface {
	// SetResult replaces the summary region's text.
	SetResult(text string)

	// SetScore draws the ad-score indicator.
	SetScore(ind score.Indicator)

	// SetScoreMessage replaces the score region with a message.
	SetScoreMessage(text string)

	// SetLoading clears both regions to the working placeholder.
	SetLoading(text string)
}

// Messages supplies the localized strings and the placeholder check.
type Messages interface {
	Strings() i18n.Strings
	IsPlaceholder(text string) bool
}

// Submission is the result of one Submit call.
type Submission struct {
	Outcome Outcome

	// Key is the normalized input.
	Key string

	// Token identifies the cancellation token of a fetching submission.
	Token fn.Option[uuid.UUID]

	// Joined is true when the submission attached to a pair already in
	// flight for the same key.
	Joined bool

	done chan struct{}
}

// Done is closed once both result handlers have run. It is closed
// immediately for rejections and cache hits.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until Done is closed or ctx ends.
func (s *Submission) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func settledSubmission(outcome Outcome, key string) *Submission {
	done := make(chan struct{})
	close(done)

	return &Submission{Outcome: outcome, Key: key, done: done}
}

// Controller runs submissions against a session.
type Controller struct {
	session *Session
	display Display
	texts   Messages
	log     *slog.Logger

	mu    sync.Mutex
	phase Phase
}

// NewController creates a controller for one popup view.
func NewController(session *Session, display Display, texts Messages,
	log *slog.Logger) *Controller {

	if log == nil {
		log = slog.Default()
	}

	return &Controller{
		session: session,
		display: display,
		texts:   texts,
		log:     log.With("component", "popup"),
	}
}

// Phase returns the current state machine phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// Submit handles one user action on input. It never waits for the backend:
// a fetching submission returns as soon as its handlers are attached.
func (c *Controller) Submit(ctx context.Context,
	input string) (*Submission, error) {

	if c.session.isClosed() {
		return nil, ErrSessionClosed
	}

	c.setPhase(PhaseValidating)
	defer c.setPhase(PhaseIdle)

	key := strings.TrimSpace(input)
	strs := c.texts.Strings()

	if key == "" || c.texts.IsPlaceholder(key) {
		c.display.SetResult(strs.SelectFirst)
		return settledSubmission(OutcomeRejected, key), nil
	}

	if cached := c.session.cache.Fresh(key); cached.IsSome() {
		c.setPhase(PhaseCacheHit)

		// A cache hit is still a new submission: whatever was in flight
		// must not draw over it.
		if err := c.retireActive(); err != nil {
			return nil, err
		}
		c.renderCached(cached.UnsafeFromSome())

		c.log.DebugContext(ctx, "Rendered cached result",
			"key_len", len(key),
		)

		return settledSubmission(OutcomeCacheHit, key), nil
	}

	c.setPhase(PhaseFetching)

	return c.fetch(ctx, key)
}

// retireActive clears the current token and releases its lease.
func (c *Controller) retireActive() error {
	prev, err := c.session.replaceActive(nil)
	if err != nil {
		return err
	}
	if prev != nil {
		prev.lease.Release()
	}

	return nil
}

// renderCached draws whichever halves of entry are present.
func (c *Controller) renderCached(entry respcache.Entry) {
	entry.Summary.WhenSome(func(text string) {
		c.display.SetResult(c.replyOrFallback(text))
	})
	entry.Score.WhenSome(func(prob float64) {
		c.display.SetScore(score.NewIndicator(prob))
	})
}

func (c *Controller) replyOrFallback(text string) string {
	if text == "" {
		return c.texts.Strings().NoResponse
	}

	return text
}

// fetch installs a new token, obtains the pair for key and attaches the two
// result handlers.
func (c *Controller) fetch(ctx context.Context, key string) (*Submission,
	error) {

	// Acquire before releasing the previous token so a resubmit of the same
	// key keeps the shared pair alive.
	lease := c.session.registry.Acquire(key)
	tok := &token{id: uuid.New(), lease: lease}

	prev, err := c.session.replaceActive(tok)
	if err != nil {
		lease.Release()
		return nil, err
	}
	if prev != nil {
		prev.lease.Release()
	}

	c.display.SetLoading(c.texts.Strings().Working)

	c.log.DebugContext(ctx, "Dispatched submission",
		"token", tok.id,
		"generation", lease.Pair.Generation,
		"joined", lease.Joined,
	)

	sub := &Submission{
		Outcome: OutcomeFetching,
		Key:     key,
		Token:   fn.Some(tok.id),
		Joined:  lease.Joined,
		done:    make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)

	pair := lease.Pair
	pair.Summary.OnComplete(context.Background(), func(
		res fn.Result[reviewapi.SummaryResponse]) {

		defer wg.Done()
		c.onSummary(tok, key, res)
	})
	pair.Score.OnComplete(context.Background(), func(
		res fn.Result[reviewapi.AdScoreResponse]) {

		defer wg.Done()
		c.onScore(tok, key, res)
	})

	go func() {
		wg.Wait()
		close(sub.done)
	}()

	return sub, nil
}

// onSummary handles the summary call's outcome for tok.
func (c *Controller) onSummary(tok *token, key string,
	res fn.Result[reviewapi.SummaryResponse]) {

	resp, err := res.Unpack()
	switch {
	case err == nil:
		c.session.cache.Put(
			key, respcache.WithSummary(resp.Reply, resp.Cached),
		)
		if c.session.isCurrent(tok) {
			c.display.SetResult(c.replyOrFallback(resp.Reply))
		}

	case reviewapi.IsCanceled(err):
		// Superseded or closed.

	case !c.session.isCurrent(tok):
		c.log.Debug("Dropped stale summary failure", "error", err)

	default:
		c.log.Warn("Summary request failed", "error", err)
		c.display.SetResult(c.texts.Strings().ServerError)
	}
}

// onScore handles the ad-score call's outcome for tok.
func (c *Controller) onScore(tok *token, key string,
	res fn.Result[reviewapi.AdScoreResponse]) {

	resp, err := res.Unpack()
	switch {
	case err == nil:
		prob := resp.ProbAd.Value()
		c.session.cache.Put(key, respcache.WithScore(prob, resp.Cached))
		if c.session.isCurrent(tok) {
			c.display.SetScore(score.NewIndicator(prob))
		}

	case reviewapi.IsCanceled(err):
		// Superseded or closed.

	case !c.session.isCurrent(tok):
		c.log.Debug("Dropped stale ad score failure", "error", err)

	default:
		c.log.Warn("Ad score request failed", "error", err)
		c.display.SetScoreMessage(c.texts.Strings().ScoreUnavailable)
	}
}
