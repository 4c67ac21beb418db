package popup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/inflight"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/roasbeef/spotter/internal/reviewapi"
	"github.com/roasbeef/spotter/internal/score"
	"github.com/stretchr/testify/require"
)

// recordingDisplay keeps every value rendered to it.
type recordingDisplay struct {
	mu        sync.Mutex
	results   []string
	scores    []score.Indicator
	scoreMsgs []string
	loading   int
}

func (d *recordingDisplay) SetResult(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, text)
}

func (d *recordingDisplay) SetScore(ind score.Indicator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scores = append(d.scores, ind)
}

func (d *recordingDisplay) SetScoreMessage(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scoreMsgs = append(d.scoreMsgs, text)
}

func (d *recordingDisplay) SetLoading(string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading++
}

func (d *recordingDisplay) snapshot() recordingDisplay {
	d.mu.Lock()
	defer d.mu.Unlock()

	return recordingDisplay{
		results:   append([]string(nil), d.results...),
		scores:    append([]score.Indicator(nil), d.scores...),
		scoreMsgs: append([]string(nil), d.scoreMsgs...),
		loading:   d.loading,
	}
}

func (d *recordingDisplay) lastResult() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.results) == 0 {
		return ""
	}

	return d.results[len(d.results)-1]
}

// fakeServer is an httptest backend with canned responses and hit counters.
type fakeServer struct {
	*httptest.Server

	summaryStatus int
	reply         string
	prob          float64

	summaryHits atomic.Int64
	scoreHits   atomic.Int64
}

func newFakeServer(t *testing.T, reply string, prob float64) *fakeServer {
	t.Helper()

	f := &fakeServer{summaryStatus: http.StatusOK, reply: reply, prob: prob}

	mux := http.NewServeMux()
	mux.HandleFunc(reviewapi.SummaryPath, func(w http.ResponseWriter,
		r *http.Request) {

		f.summaryHits.Add(1)
		if f.summaryStatus != http.StatusOK {
			http.Error(w, "internal error", f.summaryStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"reply": f.reply, "cached": false,
		})
	})
	mux.HandleFunc(reviewapi.DetectAdPath, func(w http.ResponseWriter,
		r *http.Request) {

		f.scoreHits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"prob_ad": f.prob, "cached": false,
		})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	return f
}

func (f *fakeServer) hits() int64 {
	return f.summaryHits.Load() + f.scoreHits.Load()
}

// harness wires a controller to backend.
type harness struct {
	session *Session
	ctrl    *Controller
	display *recordingDisplay
	texts   *i18n.Presenter
}

func newHarness(t *testing.T, backend inflight.Backend) *harness {
	t.Helper()

	texts := i18n.NewPresenter(i18n.PresenterConfig{
		Store: kvstore.NewMemStore(),
	})
	session := NewSession(SessionConfig{Backend: backend})
	t.Cleanup(session.Close)

	display := &recordingDisplay{}

	return &harness{
		session: session,
		ctrl:    NewController(session, display, texts, nil),
		display: display,
		texts:   texts,
	}
}

func newClient(url string) *reviewapi.Client {
	return reviewapi.NewClient(reviewapi.Config{
		BaseURL: url,
		Timeout: 5 * time.Second,
	}, nil)
}

func waitDone(t *testing.T, sub *Submission) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sub.Wait(ctx))
}

// TestSubmitGenuineReview runs the plain fetch path end to end over HTTP.
func TestSubmitGenuineReview(t *testing.T) {
	t.Parallel()

	const reply = "This looks like a genuine review."
	srv := newFakeServer(t, reply, 0.05)
	h := newHarness(t, newClient(srv.URL))

	sub, err := h.ctrl.Submit(context.Background(),
		"  Great product, fast shipping!  ")
	require.NoError(t, err)
	require.Equal(t, OutcomeFetching, sub.Outcome)
	require.Equal(t, "Great product, fast shipping!", sub.Key)
	require.True(t, sub.Token.IsSome())
	waitDone(t, sub)

	got := h.display.snapshot()
	require.Equal(t, 1, got.loading)
	require.Equal(t, []string{reply}, got.results)
	require.Len(t, got.scores, 1)
	require.Equal(t, "5%", got.scores[0].Label)
	require.Equal(t, score.BandA, got.scores[0].Band)

	require.Equal(t, 1, h.session.Cache().Len())
	entry := h.session.Cache().Get("Great product, fast shipping!")
	require.True(t, entry.IsSome())
	require.Equal(t, PhaseIdle, h.ctrl.Phase())
}

// TestSubmitTwiceHitsCache verifies the second submit within the TTL makes
// no network calls and renders the same output.
func TestSubmitTwiceHitsCache(t *testing.T) {
	t.Parallel()

	srv := newFakeServer(t, "fine", 0.3)
	h := newHarness(t, newClient(srv.URL))
	ctx := context.Background()

	first, err := h.ctrl.Submit(ctx, "same text")
	require.NoError(t, err)
	waitDone(t, first)
	require.EqualValues(t, 2, srv.hits())
	firstView := h.display.snapshot()

	second, err := h.ctrl.Submit(ctx, "same text")
	require.NoError(t, err)
	require.Equal(t, OutcomeCacheHit, second.Outcome)
	require.True(t, second.Token.IsNone())

	select {
	case <-second.Done():
	default:
		t.Fatal("cache hit submission not settled")
	}

	require.EqualValues(t, 2, srv.hits())

	secondView := h.display.snapshot()
	require.Equal(t, firstView.results[0], secondView.results[1])
	require.Equal(t, firstView.scores[0], secondView.scores[1])
	require.Equal(t, firstView.loading, secondView.loading)
}

// TestRapidDoubleSubmitDedupes verifies two submits of the same text before
// the first completes share one pair of backend calls.
func TestRapidDoubleSubmitDedupes(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	h := newHarness(t, backend)
	ctx := context.Background()

	first, err := h.ctrl.Submit(ctx, "double click")
	require.NoError(t, err)
	second, err := h.ctrl.Submit(ctx, "double click")
	require.NoError(t, err)

	require.False(t, first.Joined)
	require.True(t, second.Joined)
	require.EqualValues(t, 1, h.session.Registry().Dispatched())

	backend.release("double click")
	waitDone(t, first)
	waitDone(t, second)

	require.EqualValues(t, 1, backend.summaryCalls.Load())
	require.EqualValues(t, 1, backend.scoreCalls.Load())
	require.Equal(t, "reply:double click", h.display.lastResult())
	require.Zero(t, backend.cancelledCount())
}

// TestSupersededSubmissionIgnored cancels A by submitting B and verifies only
// B's outcome is rendered.
func TestSupersededSubmissionIgnored(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	h := newHarness(t, backend)
	ctx := context.Background()

	subA, err := h.ctrl.Submit(ctx, "review A")
	require.NoError(t, err)
	subB, err := h.ctrl.Submit(ctx, "review B")
	require.NoError(t, err)

	// A's calls observe cancellation without being released.
	waitDone(t, subA)
	require.Equal(t, 2, backend.cancelledCount())

	backend.release("review B")
	waitDone(t, subB)

	got := h.display.snapshot()
	require.Equal(t, []string{"reply:review B"}, got.results)
	require.Len(t, got.scores, 1)
	require.Empty(t, got.scoreMsgs)
	require.True(t, h.session.Cache().Get("review A").IsNone())
}

// TestCacheHitSupersedesInFlight submits A while B is cached, then
// resubmits B. B renders from the cache and A's late reply must not replace
// it.
func TestCacheHitSupersedesInFlight(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	backend.ignoreCancel = true
	h := newHarness(t, backend)
	ctx := context.Background()

	backend.release("review B")
	subB, err := h.ctrl.Submit(ctx, "review B")
	require.NoError(t, err)
	waitDone(t, subB)

	subA, err := h.ctrl.Submit(ctx, "review A")
	require.NoError(t, err)
	require.Equal(t, OutcomeFetching, subA.Outcome)

	hit, err := h.ctrl.Submit(ctx, "review B")
	require.NoError(t, err)
	require.Equal(t, OutcomeCacheHit, hit.Outcome)

	_, active := h.session.ActiveToken()
	require.False(t, active)

	backend.release("review A")
	waitDone(t, subA)

	got := h.display.snapshot()
	require.Equal(t, []string{"reply:review B", "reply:review B"},
		got.results)
	require.Len(t, got.scores, 2)
	require.Equal(t, "reply:review B", h.display.lastResult())
}

// TestCacheHitCancelsInFlight verifies the superseded fetch is cancelled.
func TestCacheHitCancelsInFlight(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	h := newHarness(t, backend)
	ctx := context.Background()

	backend.release("review B")
	subB, err := h.ctrl.Submit(ctx, "review B")
	require.NoError(t, err)
	waitDone(t, subB)

	subA, err := h.ctrl.Submit(ctx, "review A")
	require.NoError(t, err)
	_, err = h.ctrl.Submit(ctx, "review B")
	require.NoError(t, err)

	waitDone(t, subA)
	require.Equal(t, 2, backend.cancelledCount())
	require.Equal(t, "reply:review B", h.display.lastResult())
}

// TestLateSuccessCachedNotRendered verifies a superseded call that completes
// anyway still fills the cache but does not reach the display.
func TestLateSuccessCachedNotRendered(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	backend.ignoreCancel = true
	h := newHarness(t, backend)
	ctx := context.Background()

	subA, err := h.ctrl.Submit(ctx, "review A")
	require.NoError(t, err)
	subB, err := h.ctrl.Submit(ctx, "review B")
	require.NoError(t, err)

	backend.release("review B")
	waitDone(t, subB)
	backend.release("review A")
	waitDone(t, subA)

	got := h.display.snapshot()
	require.Equal(t, []string{"reply:review B"}, got.results)
	require.True(t, h.session.Cache().Get("review A").IsSome())
}

// TestPlaceholderRejected verifies placeholder content never reaches the
// cache or the registry.
func TestPlaceholderRejected(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	h := newHarness(t, backend)
	strs := h.texts.Strings()

	inputs := []string{
		"",
		"   ",
		strs.Placeholder,
		i18n.DefaultTable()[i18n.English].Placeholder,
	}
	for _, input := range inputs {
		sub, err := h.ctrl.Submit(context.Background(), input)
		require.NoError(t, err)
		require.Equal(t, OutcomeRejected, sub.Outcome)
		require.Equal(t, strs.SelectFirst, h.display.lastResult())
	}

	require.Zero(t, h.session.Cache().Len())
	require.Zero(t, h.session.Registry().Len())
	require.Zero(t, h.session.Registry().Dispatched())
}

// TestSummaryFailureKeepsScore verifies the two regions fail independently.
func TestSummaryFailureKeepsScore(t *testing.T) {
	t.Parallel()

	srv := newFakeServer(t, "", 0.8)
	srv.summaryStatus = http.StatusInternalServerError
	h := newHarness(t, newClient(srv.URL))

	sub, err := h.ctrl.Submit(context.Background(), "mixed outcome")
	require.NoError(t, err)
	waitDone(t, sub)

	got := h.display.snapshot()
	require.Equal(t, []string{h.texts.Strings().ServerError}, got.results)
	require.Len(t, got.scores, 1)
	require.Equal(t, "80%", got.scores[0].Label)
	require.Equal(t, score.BandE, got.scores[0].Band)
	require.Empty(t, got.scoreMsgs)

	entry := h.session.Cache().Get("mixed outcome")
	require.True(t, entry.IsSome())
	require.True(t, entry.UnsafeFromSome().Summary.IsNone())
}

func TestEmptyReplyFallsBack(t *testing.T) {
	t.Parallel()

	srv := newFakeServer(t, "", 0.1)
	h := newHarness(t, newClient(srv.URL))

	sub, err := h.ctrl.Submit(context.Background(), "quiet backend")
	require.NoError(t, err)
	waitDone(t, sub)

	require.Equal(t, h.texts.Strings().NoResponse, h.display.lastResult())
}

func TestSubmitAfterClose(t *testing.T) {
	t.Parallel()

	h := newHarness(t, newKeyedBackend())
	h.session.Close()

	_, err := h.ctrl.Submit(context.Background(), "anything")
	require.ErrorIs(t, err, ErrSessionClosed)
}

// TestCloseCancelsInFlight verifies closing the session cancels the active
// submission without rendering anything.
func TestCloseCancelsInFlight(t *testing.T) {
	t.Parallel()

	backend := newKeyedBackend()
	h := newHarness(t, backend)

	sub, err := h.ctrl.Submit(context.Background(), "closing")
	require.NoError(t, err)
	h.session.Close()
	waitDone(t, sub)

	require.Equal(t, 2, backend.cancelledCount())
	require.Empty(t, h.display.snapshot().results)

	_, active := h.session.ActiveToken()
	require.False(t, active)
}
