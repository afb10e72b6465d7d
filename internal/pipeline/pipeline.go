// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the research agents: fetch papers, extract
// keywords, generate a proposal and format it. The chain runs either as
// direct calls (Innovate) or through a hand-off channel
// (InnovateViaChannel); both produce the same Result for the same input.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pdiddy/research-agent/internal/format"
	"github.com/pdiddy/research-agent/internal/keywords"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	// MaxAnalyzeDocuments bounds the batch Sample returns for the
	// standalone keyword report.
	MaxAnalyzeDocuments = 20

	// MinKeywords is the fewest keywords worth generating a proposal from.
	MinKeywords = 2
)

var (
	// ErrNoDocuments means the fetch succeeded but returned nothing.
	ErrNoDocuments = errors.New("no papers found")

	// ErrNotEnoughKeywords means extraction produced fewer than MinKeywords terms.
	ErrNotEnoughKeywords = errors.New("not enough keywords extracted")
)

// Source fetches documents for a topic.
type Source interface {
	Fetch(ctx context.Context, topic string, maxResults int) ([]types.Document, error)
}

// Generator produces raw proposal text from keywords.
type Generator interface {
	Generate(ctx context.Context, keywords []string) (string, error)
}

// ActionRecorder persists a trace of agent activity.
type ActionRecorder interface {
	LogAgentAction(ctx context.Context, agent, action, data string) error
}

// Result is the outcome of one proposal run.
type Result struct {
	Topic     string               `json:"topic"`
	Entries   []types.KeywordEntry `json:"top_keywords"`
	Keywords  []string             `json:"keywords"`
	Raw       string               `json:"raw"`
	Formatted string               `json:"proposal"`
}

// Orchestrator wires a Source and a Generator into the agent chain.
type Orchestrator struct {
	source    Source
	generator Generator
	actions   ActionRecorder
	log       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithActionRecorder records each agent step through r.
func WithActionRecorder(r ActionRecorder) Option {
	return func(o *Orchestrator) { o.actions = r }
}

// New returns an Orchestrator. generator may be nil for callers that only
// fetch and analyze.
func New(source Source, generator Generator, log *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		generator: generator,
		log:       logging.OrDiscard(log).With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Papers fetches up to maxResults documents for topic. Fetch failures are
// returned unchanged.
func (o *Orchestrator) Papers(ctx context.Context, topic string, maxResults int) ([]types.Document, error) {
	docs, err := o.source.Fetch(ctx, topic, maxResults)
	if err != nil {
		o.log.Warn("fetch failed", "topic", topic, "error", err)
		return nil, err
	}
	o.record(ctx, "research", "fetch", topic+": "+strconv.Itoa(len(docs))+" papers")
	return docs, nil
}

// Analyze ranks keywords across every document in docs. It is the only
// place the pipeline computes keywords.
func (o *Orchestrator) Analyze(docs []types.Document) []types.KeywordEntry {
	return keywords.Extract(docs)
}

// Sample returns at most MaxAnalyzeDocuments documents from the front of
// docs, the batch the standalone analysis views report on.
func Sample(docs []types.Document) []types.Document {
	if len(docs) > MaxAnalyzeDocuments {
		return docs[:MaxAnalyzeDocuments]
	}
	return docs
}

// Keywords runs Analyze and checks the result is usable for generation.
func (o *Orchestrator) Keywords(docs []types.Document) ([]types.KeywordEntry, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	entries := o.Analyze(docs)
	if len(entries) < MinKeywords {
		return entries, fmt.Errorf("%w: got %d", ErrNotEnoughKeywords, len(entries))
	}
	return entries, nil
}

// Propose generates and formats a proposal from ranked keywords.
func (o *Orchestrator) Propose(ctx context.Context, topic string, entries []types.KeywordEntry) (Result, error) {
	if o.generator == nil {
		return Result{}, errors.New("no generator configured")
	}
	terms := types.Terms(entries)
	raw, err := o.generator.Generate(ctx, terms)
	if err != nil {
		o.log.Warn("generation failed", "topic", topic, "error", err)
		return Result{}, err
	}
	o.record(ctx, "innovation", "generate", topic+": "+strings.Join(terms, ", "))
	return Result{
		Topic:     topic,
		Entries:   entries,
		Keywords:  terms,
		Raw:       raw,
		Formatted: format.Proposal(raw),
	}, nil
}

// FromDocuments runs keyword extraction and generation over docs that were
// fetched earlier.
func (o *Orchestrator) FromDocuments(ctx context.Context, topic string, docs []types.Document) (Result, error) {
	entries, err := o.Keywords(docs)
	if err != nil {
		return Result{}, err
	}
	return o.Propose(ctx, topic, entries)
}

// Innovate runs the direct chain: fetch, extract, generate, format.
func (o *Orchestrator) Innovate(ctx context.Context, topic string, maxResults int) (Result, error) {
	docs, err := o.Papers(ctx, topic, maxResults)
	if err != nil {
		return Result{}, err
	}
	return o.FromDocuments(ctx, topic, docs)
}

func (o *Orchestrator) record(ctx context.Context, agent, action, data string) {
	if o.actions == nil {
		return
	}
	if err := o.actions.LogAgentAction(ctx, agent, action, data); err != nil {
		o.log.Warn("recording agent action", "agent", agent, "action", action, "error", err)
	}
}
