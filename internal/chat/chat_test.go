// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/internal/generate"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/pkg/types"
)

var docs = []types.Document{
	{Title: "Quantum Computing Advances", Summary: "Researchers announce breakthrough quantum algorithm results"},
	{Title: "Quantum Error Correction", Summary: "Surface codes protect logical qubits"},
}

type stubSource struct {
	docs  []types.Document
	err   error
	calls int
}

func (s *stubSource) Fetch(context.Context, string, int) ([]types.Document, error) {
	s.calls++
	return s.docs, s.err
}

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, []string) (string, error) { return g.text, g.err }

type stubSettings struct{ s types.Settings }

func (s stubSettings) Load() (types.Settings, error) { return s.s, nil }

type stubLatest struct {
	docs []types.Document
	s    types.Settings
	ok   bool
}

func (l stubLatest) Latest() ([]types.Document, types.Settings, bool) { return l.docs, l.s, l.ok }

type memRecorder struct {
	saved []types.Proposal
	err   error
}

func (m *memRecorder) InsertProposal(_ context.Context, p types.Proposal) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.saved = append(m.saved, p)
	return int64(len(m.saved)), nil
}

var defaults = types.Settings{Topic: "quantum", MaxResults: 5}

func newRouter(src *stubSource, gen stubGenerator, latest LatestBatch, rec ProposalRecorder) *Router {
	orch := pipeline.New(src, gen, nil)
	return NewRouter(orch, stubSettings{defaults}, latest, rec, nil)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want Intent
	}{
		{"Find me something", IntentPapers},
		{"any new PAPERS?", IntentPapers},
		{"deep learning news", IntentPapers},
		{"give me an idea", IntentProposal},
		{"Generate a proposal", IntentProposal},
		{"show trends", IntentTrends},
		{"pattern please", IntentTrends},
		{"hello there", IntentHelp},
		{"", IntentHelp},
		// Paper triggers win over proposal triggers.
		{"proposal about robots", IntentPapers},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.msg))
		})
	}
}

func TestRespond_Help(t *testing.T) {
	src := &stubSource{docs: docs}
	reply, err := newRouter(src, stubGenerator{}, nil, nil).Respond(context.Background(), "alice", "hello")
	require.NoError(t, err)
	assert.Equal(t, HelpMessage, reply.Text)
	assert.Nil(t, reply.ProposalID)
	assert.Equal(t, 0, src.calls)
}

func TestRespond_Empty(t *testing.T) {
	_, err := newRouter(&stubSource{}, stubGenerator{}, nil, nil).Respond(context.Background(), "alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRespond_Papers(t *testing.T) {
	src := &stubSource{docs: docs}
	reply, err := newRouter(src, stubGenerator{}, nil, nil).Respond(context.Background(), "alice", "find papers")
	require.NoError(t, err)
	assert.Equal(t, "I found 2 recent papers:\n- Quantum Computing Advances\n- Quantum Error Correction", reply.Text)
	assert.Equal(t, 1, src.calls)
}

func TestRespond_UsesLatestBatchWhenSettingsMatch(t *testing.T) {
	src := &stubSource{docs: docs}
	cached := []types.Document{{Title: "Cached Paper"}}

	reply, err := newRouter(src, stubGenerator{}, stubLatest{cached, defaults, true}, nil).
		Respond(context.Background(), "alice", "find papers")
	require.NoError(t, err)
	assert.Equal(t, "I found 1 recent papers:\n- Cached Paper", reply.Text)
	assert.Equal(t, 0, src.calls)

	stale := stubLatest{cached, types.Settings{Topic: "biology", MaxResults: 5}, true}
	_, err = newRouter(src, stubGenerator{}, stale, nil).Respond(context.Background(), "alice", "find papers")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestRespond_Trends(t *testing.T) {
	reply, err := newRouter(&stubSource{docs: docs}, stubGenerator{}, nil, nil).
		Respond(context.Background(), "alice", "show trends")
	require.NoError(t, err)
	assert.Equal(t, "Top keywords and trends:\n- quantum (3)\n- computing (1)\n- advances (1)\n- researchers (1)\n- announce (1)", reply.Text)
}

func TestRespond_Proposal(t *testing.T) {
	rec := &memRecorder{}
	gen := stubGenerator{text: "**Title:** Qubits\n**Impact:**\nBig"}

	reply, err := newRouter(&stubSource{docs: docs}, gen, nil, rec).
		Respond(context.Background(), "alice", "generate an idea")
	require.NoError(t, err)
	assert.Equal(t, "# 💡 Innovation Proposal: Qubits\n---\n\n## 🌍 Impact\n- Big", reply.Text)
	require.NotNil(t, reply.ProposalID)
	assert.Equal(t, int64(1), *reply.ProposalID)

	require.Len(t, rec.saved, 1)
	saved := rec.saved[0]
	assert.Equal(t, "alice", saved.Username)
	assert.Equal(t, "quantum", saved.Topic)
	assert.Equal(t, gen.text, saved.RawText)
	assert.Equal(t, reply.Text, saved.FormattedText)
	assert.Equal(t, []string{"quantum", "computing", "advances", "researchers", "announce"}, saved.Keywords)
}

func TestRespond_ProposalFallbacks(t *testing.T) {
	tests := []struct {
		name string
		src  *stubSource
		gen  stubGenerator
		want string
	}{
		{"no papers", &stubSource{}, stubGenerator{text: "x"}, NoPapersMessage},
		{"not enough keywords", &stubSource{docs: []types.Document{{Title: "single"}}}, stubGenerator{text: "x"}, NotEnoughKeywordsMessage},
		{"generation failure", &stubSource{docs: docs}, stubGenerator{err: &generate.GenerationError{Reason: "backend call failed"}}, GenerationFailedMessage},
		{"fetch failure", &stubSource{err: errors.New("arXiv down")}, stubGenerator{text: "x"}, FetchFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			reply, err := newRouter(tt.src, tt.gen, nil, rec).Respond(context.Background(), "alice", "new proposal")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
			assert.Nil(t, reply.ProposalID)
			assert.Empty(t, rec.saved)
		})
	}
}

func TestRespond_RecorderError(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	_, err := newRouter(&stubSource{docs: docs}, stubGenerator{text: "ok"}, nil, rec).
		Respond(context.Background(), "alice", "new proposal")
	assert.ErrorContains(t, err, "disk full")
}

type stubCache struct {
	docs  []types.Document
	err   error
	topic string
}

func (c *stubCache) CachedPapers(_ context.Context, topic string) ([]types.Document, error) {
	c.topic = topic
	return c.docs, c.err
}

func TestRespond_FetchFailureFallsBackToCache(t *testing.T) {
	tests := []struct {
		name  string
		cache *stubCache
		want  string
	}{
		{"cached batch", &stubCache{docs: docs}, "I found 2 recent papers:\n- Quantum Computing Advances\n- Quantum Error Correction"},
		{"empty cache", &stubCache{}, FetchFailedMessage},
		{"cache error", &stubCache{err: errors.New("locked")}, FetchFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{err: errors.New("arxiv down")}
			orch := pipeline.New(src, stubGenerator{}, nil)
			r := NewRouter(orch, stubSettings{defaults}, nil, nil, nil, WithPaperCache(tt.cache))

			reply, err := r.Respond(context.Background(), "alice", "find papers")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Text)
			assert.Equal(t, "quantum", tt.cache.topic)
		})
	}
}

func TestRespond_CacheTrimmedToMaxResults(t *testing.T) {
	src := &stubSource{err: errors.New("arxiv down")}
	orch := pipeline.New(src, stubGenerator{}, nil)
	one := types.Settings{Topic: "quantum", MaxResults: 1}
	r := NewRouter(orch, stubSettings{one}, nil, nil, nil, WithPaperCache(&stubCache{docs: docs}))

	reply, err := r.Respond(context.Background(), "alice", "find papers")
	require.NoError(t, err)
	assert.Equal(t, "I found 1 recent papers:\n- Quantum Computing Advances", reply.Text)
}
