// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research agents over HTTP. Every route except
// registration, login, logout and health requires a session cookie.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/research-agent/internal/chat"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/settings"
	"github.com/pdiddy/research-agent/internal/store"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Defaults applied by New.
const (
	DefaultAddr           = ":8000"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultCookieName     = "research_agent_session"
	DefaultRequestTimeout = 2 * time.Minute
	shutdownTimeout       = 10 * time.Second
)

// Deps are the collaborators the server calls into. Refresher may be nil.
type Deps struct {
	Store        *store.Store
	Settings     *settings.Store
	Orchestrator *pipeline.Orchestrator
	Chat         *chat.Router
	Refresher    *pipeline.Refresher
	Log          *slog.Logger
}

// Server is the HTTP boundary.
type Server struct {
	cfg       types.ServerConfig
	store     *store.Store
	settings  *settings.Store
	orch      *pipeline.Orchestrator
	chat      *chat.Router
	refresher *pipeline.Refresher
	log       *slog.Logger
}

// New returns a Server with defaults filled into cfg.
func New(cfg types.ServerConfig, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{
		cfg:       cfg,
		store:     deps.Store,
		settings:  deps.Settings,
		orch:      deps.Orchestrator,
		chat:      deps.Chat,
		refresher: deps.Refresher,
		log:       logging.OrDiscard(deps.Log).With("component", "server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/check-session", s.handleCheckSession)
		r.Get("/config", s.handleGetConfig)
		r.Post("/set-config", s.handleSetConfig)
		r.Get("/fetch-papers", s.handleFetchPapers)
		r.Get("/analyze", s.handleAnalyze)
		r.Get("/innovate", s.handleInnovate)
		r.Get("/run-agents", s.handleRunAgents)
		r.Post("/chat", s.handleChat)
		r.Get("/chat/history", s.handleChatHistory)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/export-report", s.handleExportReport)
	})

	return r
}

// Run serves until ctx is cancelled, then stops the refresher and shuts the
// HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server starting", slog.String("addr", s.cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if s.refresher != nil {
		if err := s.refresher.Start(ctx); err != nil {
			s.log.Warn("refresher not started", slog.Any("err", err))
		}
	}

	select {
	case err := <-errCh:
		s.stopRefresher()
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received")
	s.stopRefresher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) stopRefresher() {
	if s.refresher != nil {
		s.refresher.Stop()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// clampInt parses raw as a positive int, using fallback when absent or
// invalid and capping at max.
func clampInt(raw string, fallback, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}
