// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/research-agent/internal/chat"
	"github.com/pdiddy/research-agent/internal/format"
	"github.com/pdiddy/research-agent/internal/generate"
	"github.com/pdiddy/research-agent/internal/handoff"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/internal/settings"
	"github.com/pdiddy/research-agent/internal/store"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Query defaults for the pipeline routes.
const (
	defaultTopic        = "AI"
	defaultRunTopic     = "gen ai"
	defaultMaxResults   = 5
	chatHistoryLimit    = 50
	reportFilename      = "latest_proposal.md"
	maxResultsExceedMsg = "Max results cannot exceed 100"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.refresher != nil {
		resp["refresher"] = s.refresher.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

// topicParams reads topic and max_results from the query string. max_results
// is capped at settings.MaxResultsLimit.
func topicParams(r *http.Request, fallbackTopic string) (string, int) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		topic = fallbackTopic
	}
	return topic, clampInt(r.URL.Query().Get("max_results"), defaultMaxResults, settings.MaxResultsLimit)
}

func (s *Server) pipelineContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
}

// writePipelineError maps pipeline failures onto HTTP statuses.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var (
		fetchErr *search.FetchError
		genErr   *generate.GenerationError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.As(err, &fetchErr):
		writeError(w, http.StatusBadGateway, "could not fetch papers")
	case errors.Is(err, pipeline.ErrNoDocuments):
		writeError(w, http.StatusNotFound, chat.NoPapersMessage)
	case errors.Is(err, pipeline.ErrNotEnoughKeywords):
		writeError(w, http.StatusUnprocessableEntity, chat.NotEnoughKeywordsMessage)
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, chat.GenerationFailedMessage)
	default:
		s.log.Error("pipeline", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	cur, err := s.settings.Load()
	if err != nil {
		s.log.Error("load settings", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load config")
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

type configRequest struct {
	Topic      string `json:"topic"`
	MaxResults int    `json:"max_results"`
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req.Topic = r.PostForm.Get("topic")
		n, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("max_results")))
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		req.MaxResults = n
	}

	if req.MaxResults > settings.MaxResultsLimit {
		writeError(w, http.StatusBadRequest, maxResultsExceedMsg)
		return
	}
	next := types.Settings{Topic: strings.TrimSpace(req.Topic), MaxResults: req.MaxResults}
	if err := s.settings.Save(next); err != nil {
		if errors.Is(err, settings.ErrInvalidMaxResults) || errors.Is(err, settings.ErrEmptyTopic) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("save settings", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	s.log.Info("config updated", "topic", next.Topic, "max_results", next.MaxResults, "user", userFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"message": "✅ Config updated", "config": next})
}

func (s *Server) handleFetchPapers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	topic, maxResults := topicParams(r, defaultTopic)
	docs, err := s.orch.Papers(ctx, topic, maxResults)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "results": docs})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	topic, maxResults := topicParams(r, defaultTopic)
	docs, err := s.orch.Papers(ctx, topic, maxResults)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "top_keywords": s.orch.Analyze(pipeline.Sample(docs))})
}

func (s *Server) handleInnovate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	topic, maxResults := topicParams(r, defaultTopic)
	res, err := s.orch.Innovate(ctx, topic, maxResults)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	id, err := s.store.InsertProposal(ctx, types.Proposal{
		Username:      userFrom(r.Context()),
		Topic:         res.Topic,
		Keywords:      res.Keywords,
		RawText:       res.Raw,
		FormattedText: res.Formatted,
	})
	if err != nil {
		s.log.Error("save proposal", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save proposal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": res.Topic, "proposal": res.Formatted, "proposal_id": id})
}

func (s *Server) handleRunAgents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	topic, maxResults := topicParams(r, defaultRunTopic)
	ch := handoff.New(s.log)
	res, err := s.orch.InnovateViaChannel(ctx, ch, topic, maxResults)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": res.Topic, "proposal": res.Formatted})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Empty message")
		return
	}

	ctx, cancel := s.pipelineContext(r)
	defer cancel()
	user := userFrom(r.Context())

	if err := s.store.AppendChat(ctx, user, message, true); err != nil {
		s.log.Warn("chat history", "error", err)
	}

	reply, err := s.chat.Respond(ctx, user, message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Empty message")
			return
		}
		s.log.Error("chat", "error", err)
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}

	if err := s.store.AppendChat(ctx, user, reply.Text, false); err != nil {
		s.log.Warn("chat history", "error", err)
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	limit := clampInt(r.URL.Query().Get("limit"), chatHistoryLimit, 500)
	history, err := s.store.ChatHistory(r.Context(), userFrom(r.Context()), limit)
	if err != nil {
		s.log.Error("chat history", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if history == nil {
		history = []store.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

type feedbackRequest struct {
	ProposalID int64  `json:"proposal_id"`
	Rating     int    `json:"rating"`
	Feedback   string `json:"feedback"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid feedback data")
		return
	}
	rating := types.Rating(req.Rating)
	if req.ProposalID <= 0 || (rating != types.RatingUp && rating != types.RatingDown) {
		writeError(w, http.StatusBadRequest, "Invalid feedback data")
		return
	}

	if err := s.store.RateProposal(r.Context(), req.ProposalID, userFrom(r.Context()), rating, req.Feedback); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "proposal not found")
			return
		}
		s.log.Error("feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "could not record feedback")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.LatestProposal(r.Context(), userFrom(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No proposals found")
			return
		}
		s.log.Error("export report", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load proposal")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+reportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(format.Report(p.Topic, p.Keywords, p.RawText)))
}
