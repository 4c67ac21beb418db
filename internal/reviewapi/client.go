// Package reviewapi is the HTTP client for the review analysis backend: the
// summary, ad-score, feedback and recommendation endpoints.
package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// SummaryPath is the endpoint returning an AI generated reply.
	SummaryPath = "/gemini"

	// DetectAdPath is the endpoint returning the ad probability.
	DetectAdPath = "/detect-ad"

	// FeedbackPath is the endpoint collecting manual labels.
	FeedbackPath = "/feedback"

	// RecommendationsPath triggers server side recommendation generation.
	RecommendationsPath = "/recommendations"

	// maxDetailLen caps how much of an error body is kept.
	maxDetailLen = 200

	// maxBodyBytes caps how much of any response body is read.
	maxBodyBytes = 1 << 20
)

// Environment selects one of the known backend deployments.
type Environment string

const (
	// EnvLocal targets a backend on the developer's machine.
	EnvLocal Environment = "local"

	// EnvServer targets the hosted backend.
	EnvServer Environment = "server"
)

// BaseURL returns the base URL of the deployment, or an error for an unknown
// environment name.
func (e Environment) BaseURL() (string, error) {
	switch e {
	case EnvLocal:
		return "http://localhost:8000", nil
	case EnvServer:
		return "http://34.174.35.119:8000", nil
	default:
		return "", fmt.Errorf("unknown environment %q (must be "+
			"'local' or 'server')", string(e))
	}
}

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the scheme+host prefix for every endpoint.
	BaseURL string

	// Timeout bounds a single request, including reading the body.
	Timeout time.Duration

	// RatePerSecond paces outgoing requests. Zero disables pacing.
	RatePerSecond float64

	// Burst is the limiter burst size when pacing is enabled.
	Burst int
}

// DefaultConfig returns a Config pointing at the local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 30 * time.Second,
		Burst:   4,
	}
}

// Client talks to the review backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log.With("component", "reviewapi"),
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Summarize asks the backend for an AI generated reply to text.
func (c *Client) Summarize(ctx context.Context,
	text string) (SummaryResponse, error) {

	var resp SummaryResponse
	err := c.postJSON(ctx, SummaryPath, TextRequest{Text: text}, &resp)
	if err != nil {
		return SummaryResponse{}, fmt.Errorf("summarize: %w", err)
	}

	if resp.Cached {
		c.log.DebugContext(ctx, "Summary served from backend cache")
	}

	return resp, nil
}

// DetectAd asks the backend for the probability that text is an ad.
func (c *Client) DetectAd(ctx context.Context,
	text string) (AdScoreResponse, error) {

	var resp AdScoreResponse
	err := c.postJSON(ctx, DetectAdPath, TextRequest{Text: text}, &resp)
	if err != nil {
		return AdScoreResponse{}, fmt.Errorf("detect ad: %w", err)
	}

	if resp.Cached {
		c.log.DebugContext(ctx, "Ad score served from backend cache")
	}

	return resp, nil
}

// SubmitFeedback records a manual ad/genuine label for text.
func (c *Client) SubmitFeedback(ctx context.Context, text string,
	isAd bool) error {

	err := c.postJSON(ctx, FeedbackPath, FeedbackRequest{
		Text: text,
		IsAd: isAd,
	}, nil)
	if err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}

	return nil
}

// TriggerRecommendations asks the backend to generate recommendations.
func (c *Client) TriggerRecommendations(ctx context.Context) error {
	if err := c.post(ctx, RecommendationsPath, nil, nil); err != nil {
		return fmt.Errorf("trigger recommendations: %w", err)
	}

	return nil
}

// postJSON encodes body as JSON and posts it to path, decoding the response
// into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body any,
	out any) error {

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return c.post(ctx, path, payload, out)
}

// post performs a single POST request.
func (c *Client) post(ctx context.Context, path string, payload []byte,
	out any) error {

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	tooLarge := len(bodyBytes) > maxBodyBytes
	if tooLarge {
		bodyBytes = bodyBytes[:maxBodyBytes]
	}

	c.log.DebugContext(ctx, "Backend call finished",
		"path", path, "status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}
	if tooLarge {
		return &MalformedResponseError{Path: path, Err: ErrBodyTooLarge}
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &MalformedResponseError{Path: path, Err: err}
	}

	return nil
}
