// Package mcp exposes the review checker as Model Context Protocol tools so
// an assistant can analyze reviews, record feedback and read
// recommendations without a browser.
package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/spotter/internal/build"
	"github.com/roasbeef/spotter/internal/feedback"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/inflight"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/roasbeef/spotter/internal/popup"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/respcache"
)

// Config holds the MCP server's dependencies.
type Config struct {
	Backend         inflight.Backend
	Feedback        feedback.Submitter
	Trigger         recommend.Trigger
	Recommendations recommend.ListSource
	Store           kvstore.Store
	Cache           respcache.Config

	Log *slog.Logger
}

// Server wraps the MCP server with one popup session.
type Server struct {
	server *mcp.Server
	cfg    Config
	log    *slog.Logger

	presenter *i18n.Presenter
	session   *popup.Session

	// mu serializes tool calls. A popup holds one active submission, so
	// concurrent analyze calls would supersede each other.
	mu sync.Mutex
}

// NewServer creates an MCP server with every tool registered.
func NewServer(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = kvstore.NewMemStore()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    build.AppName,
		Version: build.Version,
	}, nil)

	s := &Server{
		server: mcpServer,
		cfg:    cfg,
		log:    cfg.Log.With("component", "mcp"),
		presenter: i18n.NewPresenter(i18n.PresenterConfig{
			Store: cfg.Store,
			Log:   cfg.Log,
		}),
		session: popup.NewSession(popup.SessionConfig{
			Backend: cfg.Backend,
			Cache:   cfg.Cache,
			Log:     cfg.Log,
		}),
	}

	s.registerTools()

	return s
}

// Init restores the stored language for tool messages.
func (s *Server) Init(ctx context.Context) error {
	return s.presenter.Init(ctx)
}

// Run serves the tools on transport until ctx is done or the peer leaves.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	defer s.session.Close()

	return s.server.Run(ctx, transport)
}

// Connect serves one session on transport without blocking.
func (s *Server) Connect(ctx context.Context,
	transport mcp.Transport) (*mcp.ServerSession, error) {

	return s.server.Connect(ctx, transport, nil)
}

// Close discards the popup session and cancels anything in flight.
func (s *Server) Close() {
	s.session.Close()
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_review",
		Description: "Summarize a review and estimate the probability " +
			"that it is a paid advertisement",
	}, s.handleAnalyzeReview)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_feedback",
		Description: "Record whether a review is an ad or genuine",
	}, s.handleSubmitFeedback)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_recommendations",
		Description: "Generate and list recommended stores",
	}, s.handleGetRecommendations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_language",
		Description: "Set the language of tool messages (ko or en)",
	}, s.handleSetLanguage)
}
