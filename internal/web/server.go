// Package web serves the popup, evaluation and recommendation pages to a
// browser over a WebSocket. Every connection gets its own popup session.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/roasbeef/spotter/internal/feedback"
	"github.com/roasbeef/spotter/internal/inflight"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/respcache"
)

// maxSelectionBytes bounds POST /api/v1/selection bodies.
const maxSelectionBytes = 64 * 1024

// Config holds the web server's dependencies.
type Config struct {
	Addr string

	// Lang forces the UI language of new connections. Empty uses the
	// stored preference.
	Lang string

	Backend         inflight.Backend
	Feedback        feedback.Submitter
	Trigger         recommend.Trigger
	Recommendations recommend.ListSource
	Store           kvstore.Store
	Cache           respcache.Config

	Log *slog.Logger
}

// Server is the HTTP server for the browser pages.
type Server struct {
	cfg Config
	log *slog.Logger
	hub *Hub
	mux *http.ServeMux
	srv *http.Server

	mu        sync.RWMutex
	selection string
}

// NewServer creates a server and starts its WebSocket hub.
func NewServer(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = kvstore.NewMemStore()
	}

	s := &Server{
		cfg: cfg,
		log: cfg.Log.With("component", "web"),
		mux: http.NewServeMux(),
	}

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.hub = NewHub(cfg.Log)
	go s.hub.Run()

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/v1/health", api(s.handleHealth))
	s.mux.HandleFunc("/api/v1/selection", api(s.handleSelection))

	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.log.Info("Starting web server", "addr", s.cfg.Addr)

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown stops the hub, which closes every session, then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()

	return s.srv.Shutdown(ctx)
}

// SetSelection records the page's current selection and tells every
// connected page about it.
func (s *Server) SetSelection(text string) {
	s.mu.Lock()
	s.selection = text
	s.mu.Unlock()

	s.hub.Broadcast(&WSMessage{
		Type:    WSMsgSelection,
		Payload: map[string]any{"text": text},
	})
}

// currentSelection is the selection source of every popup view.
func (s *Server) currentSelection(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selection, nil
}

// APIError is the body of every failed API call.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail contains error details.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func api(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Error encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{
		Error: APIErrorDetail{Code: code, Message: message},
	})
}

// handleHealth handles GET /api/v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

type selectionBody struct {
	Text string `json:"text"`
}

// handleSelection handles GET and POST /api/v1/selection. POST is how a
// page (or a browser helper) reports the text the user highlighted.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		text, _ := s.currentSelection(r.Context())
		writeJSON(w, http.StatusOK, selectionBody{Text: text})

	case http.MethodPost:
		var body selectionBody
		dec := json.NewDecoder(http.MaxBytesReader(
			w, r.Body, maxSelectionBytes,
		))
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body",
				"Invalid JSON body")
			return
		}

		body.Text = strings.TrimSpace(body.Text)
		s.SetSelection(body.Text)
		writeJSON(w, http.StatusOK, body)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method not allowed")
	}
}
