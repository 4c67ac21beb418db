package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/reviewapi"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	calls atomic.Int64
}

func (b *stubBackend) Summarize(_ context.Context,
	text string) (reviewapi.SummaryResponse, error) {

	b.calls.Add(1)
	return reviewapi.SummaryResponse{Reply: "genuine: " + text}, nil
}

func (b *stubBackend) DetectAd(_ context.Context,
	_ string) (reviewapi.AdScoreResponse, error) {

	b.calls.Add(1)
	return reviewapi.AdScoreResponse{
		ProbAd: reviewapi.NewProbability(0.9),
	}, nil
}

type stubFeedback struct {
	err error
}

func (f stubFeedback) SubmitFeedback(context.Context, string, bool) error {
	return f.err
}

type stubTrigger struct{}

func (stubTrigger) TriggerRecommendations(context.Context) error {
	return nil
}

type stubList []byte

func (l stubList) Load(context.Context) ([]byte, error) {
	return l, nil
}

// connect serves s over in-memory transports and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()

	_, err := s.Connect(ctx, serverT)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name: "test", Version: "v0.0.1",
	}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		s.Close()
	})

	return session
}

// call invokes a tool and decodes its structured result into out.
func call(t *testing.T, session *mcp.ClientSession, name string, args any,
	out any) {

	t.Helper()

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func newTestServer(backend *stubBackend, fb stubFeedback) *Server {
	return NewServer(Config{
		Backend:  backend,
		Feedback: fb,
		Trigger:  stubTrigger{},
		Recommendations: stubList(
			`[{"가게":"Cafe","이유":"quiet","리뷰":"good"}]`,
		),
		Store: kvstore.NewMemStore(),
	})
}

// TestNewServer verifies that every tool schema is valid.
func TestNewServer(t *testing.T) {
	t.Parallel()

	require.NotNil(t, newTestServer(&stubBackend{}, stubFeedback{}))
}

func TestAnalyzeReviewCaches(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	session := connect(t, newTestServer(backend, stubFeedback{}))

	var first AnalyzeReviewResult
	call(t, session, "analyze_review", AnalyzeReviewArgs{
		Text: "Best cafe ever!!",
	}, &first)

	require.Equal(t, "fetching", first.Outcome)
	require.Equal(t, "genuine: Best cafe ever!!", first.Summary)
	require.Equal(t, "90%", first.Label)
	require.Equal(t, "e", first.Band)
	require.EqualValues(t, 2, backend.calls.Load())

	var second AnalyzeReviewResult
	call(t, session, "analyze_review", AnalyzeReviewArgs{
		Text: "  Best cafe ever!!  ",
	}, &second)

	require.Equal(t, "cache_hit", second.Outcome)
	require.Equal(t, first.Summary, second.Summary)
	require.EqualValues(t, 2, backend.calls.Load())
}

func TestAnalyzeReviewRejectsEmpty(t *testing.T) {
	t.Parallel()

	session := connect(t, newTestServer(&stubBackend{}, stubFeedback{}))

	var res AnalyzeReviewResult
	call(t, session, "analyze_review", AnalyzeReviewArgs{Text: "   "}, &res)

	require.Equal(t, "rejected", res.Outcome)
	require.Equal(t, i18n.DefaultTable()[i18n.Korean].SelectFirst,
		res.Summary)
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	en := i18n.DefaultTable()[i18n.English]

	tests := []struct {
		name      string
		fb        stubFeedback
		isAd      bool
		wantSaved bool
		wantMsg   string
	}{
		{
			name:      "ad saved",
			isAd:      true,
			wantSaved: true,
			wantMsg:   en.SavedAd,
		},
		{
			name:      "genuine saved",
			wantSaved: true,
			wantMsg:   en.SavedGenuine,
		},
		{
			name:    "backend failure",
			fb:      stubFeedback{err: errors.New("boom")},
			wantMsg: en.SaveFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			session := connect(t, newTestServer(&stubBackend{}, tc.fb))

			var lang SetLanguageResult
			call(t, session, "set_language", SetLanguageArgs{
				Lang: "en",
			}, &lang)
			require.Equal(t, "en", lang.Lang)

			var res SubmitFeedbackResult
			call(t, session, "submit_feedback", SubmitFeedbackArgs{
				Text: "Best cafe ever!!", IsAd: tc.isAd,
			}, &res)

			require.Equal(t, tc.wantSaved, res.Saved)
			require.Equal(t, tc.wantMsg, res.Message)
		})
	}
}

func TestGetRecommendations(t *testing.T) {
	t.Parallel()

	session := connect(t, newTestServer(&stubBackend{}, stubFeedback{}))

	var res GetRecommendationsResult
	call(t, session, "get_recommendations", GetRecommendationsArgs{}, &res)

	require.Equal(t, []recommend.Item{{
		Store: "Cafe", Reason: "quiet", Review: "good",
	}}, res.Items)
	require.Empty(t, res.Message)
}

func TestSetLanguageToggles(t *testing.T) {
	t.Parallel()

	session := connect(t, newTestServer(&stubBackend{}, stubFeedback{}))

	var res SetLanguageResult
	call(t, session, "set_language", SetLanguageArgs{}, &res)
	require.Equal(t, "en", res.Lang)

	call(t, session, "set_language", SetLanguageArgs{}, &res)
	require.Equal(t, "ko", res.Lang)
}
