// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"github.com/pdiddy/research-agent/internal/handoff"
	"github.com/pdiddy/research-agent/pkg/types"
)

// StagePublishPapers fetches documents and publishes them under
// handoff.TopicPapers.
func (o *Orchestrator) StagePublishPapers(ctx context.Context, ch *handoff.Channel, topic string, maxResults int) error {
	docs, err := o.Papers(ctx, topic, maxResults)
	if err != nil {
		return err
	}
	ch.Publish(handoff.TopicPapers, docs)
	return nil
}

// StageAnalyze consumes handoff.TopicPapers, extracts keywords and
// publishes them under handoff.TopicKeywords. Nothing is published when
// extraction fails.
func (o *Orchestrator) StageAnalyze(ch *handoff.Channel) error {
	docs, _ := handoff.ConsumeAs[[]types.Document](ch, handoff.TopicPapers)
	entries, err := o.Keywords(docs)
	if err != nil {
		return err
	}
	ch.Publish(handoff.TopicKeywords, entries)
	return nil
}

// StageGenerate consumes handoff.TopicKeywords and generates the proposal.
func (o *Orchestrator) StageGenerate(ctx context.Context, ch *handoff.Channel, topic string) (Result, error) {
	entries, ok := handoff.ConsumeAs[[]types.KeywordEntry](ch, handoff.TopicKeywords)
	if !ok || len(entries) < MinKeywords {
		return Result{}, ErrNotEnoughKeywords
	}
	return o.Propose(ctx, topic, entries)
}

// InnovateViaChannel runs the chain with each stage handing its output to
// the next through ch. A nil ch gets a fresh channel scoped to this call.
func (o *Orchestrator) InnovateViaChannel(ctx context.Context, ch *handoff.Channel, topic string, maxResults int) (Result, error) {
	if ch == nil {
		ch = handoff.New(o.log)
	}
	if err := o.StagePublishPapers(ctx, ch, topic, maxResults); err != nil {
		return Result{}, err
	}
	if err := o.StageAnalyze(ch); err != nil {
		return Result{}, err
	}
	return o.StageGenerate(ctx, ch, topic)
}
