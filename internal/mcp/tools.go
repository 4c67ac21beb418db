package mcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/spotter/internal/feedback"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/popup"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/score"
	"github.com/roasbeef/spotter/internal/view"
)

// capture records what a page would have rendered.
type capture struct {
	mu       sync.Mutex
	result   string
	scoreMsg string
	ind      *score.Indicator
	status   string
	message  string
}

func (c *capture) SetResult(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = text
}

func (c *capture) SetScore(ind score.Indicator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ind = &ind
}

func (c *capture) SetScoreMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scoreMsg = text
}

func (c *capture) SetLoading(string) {}

func (c *capture) SetStatus(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = text
}

func (c *capture) SetMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = text
}

// SetItems is a no-op; the items are the page's return value.
func (c *capture) SetItems([]recommend.Item, i18n.Strings) {}

// AnalyzeReviewArgs are the arguments for the analyze_review tool.
type AnalyzeReviewArgs struct {
	Text string `json:"text" jsonschema:"Review text to analyze"`
}

// AnalyzeReviewResult is the result of the analyze_review tool.
type AnalyzeReviewResult struct {
	Outcome      string  `json:"outcome"`
	Summary      string  `json:"summary"`
	AdPercent    float64 `json:"ad_percent"`
	Band         string  `json:"band,omitempty"`
	Label        string  `json:"label,omitempty"`
	ScoreMessage string  `json:"score_message,omitempty"`
}

func (s *Server) handleAnalyzeReview(ctx context.Context,
	req *mcp.CallToolRequest,
	args AnalyzeReviewArgs) (*mcp.CallToolResult, AnalyzeReviewResult, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	display := &capture{}
	ctrl := popup.NewController(s.session, display, s.presenter, s.cfg.Log)

	sub, err := ctrl.Submit(ctx, args.Text)
	if err != nil {
		return nil, AnalyzeReviewResult{}, err
	}
	if err := sub.Wait(ctx); err != nil {
		return nil, AnalyzeReviewResult{}, err
	}

	display.mu.Lock()
	defer display.mu.Unlock()

	result := AnalyzeReviewResult{
		Outcome:      sub.Outcome.String(),
		Summary:      display.result,
		ScoreMessage: display.scoreMsg,
	}
	if display.ind != nil {
		result.AdPercent = display.ind.Percent
		result.Band = string(display.ind.Band)
		result.Label = display.ind.Label
	}

	s.log.DebugContext(ctx, "Analyzed review",
		"outcome", result.Outcome, "label", result.Label,
	)

	return nil, result, nil
}

// SubmitFeedbackArgs are the arguments for the submit_feedback tool.
type SubmitFeedbackArgs struct {
	Text string `json:"text" jsonschema:"Review text being judged"`
	IsAd bool   `json:"is_ad" jsonschema:"True if the review is an advertisement"`
}

// SubmitFeedbackResult is the result of the submit_feedback tool.
type SubmitFeedbackResult struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}

func (s *Server) handleSubmitFeedback(ctx context.Context,
	req *mcp.CallToolRequest,
	args SubmitFeedbackArgs) (*mcp.CallToolResult, SubmitFeedbackResult, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	status := &capture{}
	page := feedback.NewPage(
		s.cfg.Feedback, view.NewTextBox(args.Text, false), s.presenter,
		status, s.cfg.Log,
	)

	err := page.Submit(ctx, args.IsAd)

	// The localized status is the answer either way; only the flag differs.
	return nil, SubmitFeedbackResult{
		Saved:   err == nil,
		Message: status.status,
	}, nil
}

// GetRecommendationsArgs are the arguments for the get_recommendations tool.
type GetRecommendationsArgs struct{}

// GetRecommendationsResult is the result of the get_recommendations tool.
type GetRecommendationsResult struct {
	Items   []recommend.Item `json:"items"`
	Message string           `json:"message,omitempty"`
}

func (s *Server) handleGetRecommendations(ctx context.Context,
	req *mcp.CallToolRequest,
	args GetRecommendationsArgs) (*mcp.CallToolResult,
	GetRecommendationsResult, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	display := &capture{}
	page := recommend.NewPage(
		s.cfg.Trigger, s.cfg.Recommendations, display, s.presenter,
		s.cfg.Log,
	)

	items, err := page.Run(ctx)
	if err != nil {
		s.log.DebugContext(ctx, "Recommendations unavailable",
			"error", err,
		)
	}

	return nil, GetRecommendationsResult{
		Items:   items,
		Message: display.message,
	}, nil
}

// SetLanguageArgs are the arguments for the set_language tool.
type SetLanguageArgs struct {
	Lang string `json:"lang,omitempty" jsonschema:"Language code, ko or en; empty toggles"`
}

// SetLanguageResult is the result of the set_language tool.
type SetLanguageResult struct {
	Lang string `json:"lang"`
}

func (s *Server) handleSetLanguage(ctx context.Context,
	req *mcp.CallToolRequest,
	args SetLanguageArgs) (*mcp.CallToolResult, SetLanguageResult, error) {

	lang, err := s.SetLanguage(ctx, args.Lang)
	if err != nil {
		return nil, SetLanguageResult{}, err
	}

	return nil, SetLanguageResult{Lang: lang}, nil
}

// SetLanguage applies lang to tool messages, or toggles when lang is empty.
// It returns the active language.
func (s *Server) SetLanguage(ctx context.Context, lang string) (string,
	error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if lang == "" {
		err = s.presenter.Toggle(ctx)
	} else {
		err = s.presenter.Apply(ctx, s.presenter.Resolve(lang))
	}

	return string(s.presenter.Current()), err
}
