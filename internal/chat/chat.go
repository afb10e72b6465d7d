// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat answers free-text messages by routing them to the research
// agents.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/research-agent/internal/generate"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Intent is what a chat message asks for.
type Intent int

const (
	IntentHelp Intent = iota
	IntentPapers
	IntentProposal
	IntentTrends
)

func (i Intent) String() string {
	switch i {
	case IntentPapers:
		return "papers"
	case IntentProposal:
		return "proposal"
	case IntentTrends:
		return "trends"
	default:
		return "help"
	}
}

// Trigger phrases per intent, matched as substrings of the lower-cased
// message and checked in intentOrder.
var (
	papersTriggers   = []string{"research", "papers", "find", "article", "paper", "about", "ai", "ml", "deep learning", "gen ai"}
	proposalTriggers = []string{"idea", "proposal", "generate", "innovation"}
	trendsTriggers   = []string{"analyze", "trends", "trend", "pattern", "analysis"}
)

var intentOrder = []struct {
	intent   Intent
	triggers []string
}{
	{IntentPapers, papersTriggers},
	{IntentProposal, proposalTriggers},
	{IntentTrends, trendsTriggers},
}

// Classify returns the first intent whose trigger appears in message.
func Classify(message string) Intent {
	m := strings.ToLower(message)
	for _, entry := range intentOrder {
		for _, trigger := range entry.triggers {
			if strings.Contains(m, trigger) {
				return entry.intent
			}
		}
	}
	return IntentHelp
}

// Canned replies.
const (
	HelpMessage = "I'm a research assistant. You can ask me to:\n" +
		"- Find recent research papers\n" +
		"- Generate research proposals\n" +
		"- Analyze trends in a field"
	NoPapersMessage          = "❌ No papers found to generate a proposal."
	NotEnoughKeywordsMessage = "❌ Not enough keywords extracted to generate a meaningful proposal."
	GenerationFailedMessage  = "❌ Failed to generate proposal. Please try again with a broader topic."
	FetchFailedMessage       = "❌ Could not fetch papers right now. Please try again later."
)

// ErrEmptyMessage is returned for a blank message.
var ErrEmptyMessage = errors.New("empty message")

// SettingsLoader supplies the topic and batch size chat works with.
type SettingsLoader interface {
	Load() (types.Settings, error)
}

// LatestBatch exposes the most recent background fetch.
type LatestBatch interface {
	Latest() ([]types.Document, types.Settings, bool)
}

// ProposalRecorder persists generated proposals.
type ProposalRecorder interface {
	InsertProposal(ctx context.Context, p types.Proposal) (int64, error)
}

// PaperCache holds the last batch fetched for each topic.
type PaperCache interface {
	CachedPapers(ctx context.Context, topic string) ([]types.Document, error)
}

// Option configures a Router.
type Option func(*Router)

// WithPaperCache makes the router answer from the cached batch when a fetch
// fails.
func WithPaperCache(c PaperCache) Option {
	return func(r *Router) { r.cache = c }
}

// Reply is the router's answer. ProposalID is set when a proposal was
// generated and stored.
type Reply struct {
	Intent     Intent `json:"-"`
	Text       string `json:"response"`
	ProposalID *int64 `json:"proposal_id"`
}

// Router dispatches chat messages.
type Router struct {
	orch     *pipeline.Orchestrator
	settings SettingsLoader
	latest   LatestBatch
	recorder ProposalRecorder
	cache    PaperCache
	log      *slog.Logger
}

// NewRouter returns a Router. latest and recorder may be nil.
func NewRouter(orch *pipeline.Orchestrator, settings SettingsLoader, latest LatestBatch, recorder ProposalRecorder, log *slog.Logger, opts ...Option) *Router {
	r := &Router{
		orch:     orch,
		settings: settings,
		latest:   latest,
		recorder: recorder,
		log:      logging.OrDiscard(log).With("component", "chat"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond answers message on behalf of username. Agent failures become
// fallback replies; only bad input, settings and persistence failures are
// returned as errors.
func (r *Router) Respond(ctx context.Context, username, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	intent := Classify(message)
	r.log.Debug("routing message", "user", username, "intent", intent.String())

	if intent == IntentHelp {
		return Reply{Intent: intent, Text: HelpMessage}, nil
	}

	s, err := r.settings.Load()
	if err != nil {
		return Reply{}, fmt.Errorf("loading settings: %w", err)
	}

	docs, err := r.papers(ctx, s)
	if err != nil {
		r.log.Warn("fetch failed", "topic", s.Topic, "error", err)
		return Reply{Intent: intent, Text: FetchFailedMessage}, nil
	}

	switch intent {
	case IntentPapers:
		return Reply{Intent: intent, Text: listPapers(docs)}, nil
	case IntentTrends:
		return Reply{Intent: intent, Text: listTrends(r.orch.Analyze(docs))}, nil
	default:
		return r.propose(ctx, username, s.Topic, docs)
	}
}

// papers returns the background batch when it was fetched with the current
// settings, else fetches afresh. A failed fetch falls back to the cached
// batch for the topic when there is one.
func (r *Router) papers(ctx context.Context, s types.Settings) ([]types.Document, error) {
	if r.latest != nil {
		if docs, fetchedWith, ok := r.latest.Latest(); ok && fetchedWith == s {
			return docs, nil
		}
	}
	docs, err := r.orch.Papers(ctx, s.Topic, s.MaxResults)
	if err == nil || r.cache == nil {
		return docs, err
	}
	cached, cacheErr := r.cache.CachedPapers(ctx, s.Topic)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	r.log.Info("answering from paper cache", "topic", s.Topic, "papers", len(cached))
	if len(cached) > s.MaxResults {
		cached = cached[:s.MaxResults]
	}
	return cached, nil
}

func (r *Router) propose(ctx context.Context, username, topic string, docs []types.Document) (Reply, error) {
	res, err := r.orch.FromDocuments(ctx, topic, docs)
	if err != nil {
		var genErr *generate.GenerationError
		switch {
		case errors.Is(err, pipeline.ErrNoDocuments):
			return Reply{Intent: IntentProposal, Text: NoPapersMessage}, nil
		case errors.Is(err, pipeline.ErrNotEnoughKeywords):
			return Reply{Intent: IntentProposal, Text: NotEnoughKeywordsMessage}, nil
		case errors.As(err, &genErr):
			r.log.Warn("proposal generation failed", "error", err)
			return Reply{Intent: IntentProposal, Text: GenerationFailedMessage}, nil
		default:
			return Reply{}, err
		}
	}

	reply := Reply{Intent: IntentProposal, Text: res.Formatted}
	if r.recorder != nil {
		id, err := r.recorder.InsertProposal(ctx, types.Proposal{
			Username:      username,
			Topic:         res.Topic,
			Keywords:      res.Keywords,
			RawText:       res.Raw,
			FormattedText: res.Formatted,
		})
		if err != nil {
			return Reply{}, fmt.Errorf("saving proposal: %w", err)
		}
		reply.ProposalID = &id
	}
	return reply, nil
}

func listPapers(docs []types.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d recent papers:\n", len(docs))
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + d.Title)
	}
	return b.String()
}

func listTrends(entries []types.KeywordEntry) string {
	var b strings.Builder
	b.WriteString("Top keywords and trends:\n")
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%d)", e.Term, e.Count)
	}
	return b.String()
}
