// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/pkg/types"
)

func doc(title, summary string) types.Document {
	return types.Document{Title: title, Summary: summary}
}

func TestExtractEmpty(t *testing.T) {
	got := Extract(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Extract([]types.Document{}))
	assert.Empty(t, Extract([]types.Document{doc("", "")}))
}

func TestExtractCaseInsensitiveAndShortWordsIgnored(t *testing.T) {
	got := Extract([]types.Document{doc("AI", "Algorithm algorithm ALGORITHM")})
	assert.Equal(t, []types.KeywordEntry{{Term: "algorithm", Count: 3}}, got)
}

func TestExtractTitleAndSummaryAreSeparated(t *testing.T) {
	// Without a separator "robust" and "models" would fuse into one token.
	got := Extract([]types.Document{doc("Robust", "models")})
	assert.Equal(t, []string{"robust", "models"}, types.Terms(got))
}

func TestExtractWordBoundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"digits attached", "model2 gpt4o transformer", []string{"transformer"}},
		{"underscore joins words", "deep_learning graphs", []string{"graphs"}},
		{"punctuation splits", "vision-language, (robotics).", []string{"vision", "language", "robotics"}},
		{"four letters too short", "tiny four words small", []string{"words", "small"}},
		{"accented words are whole words", "Schrödinger equation naïvely großartige résumé Poincaré Erdős", []string{"equation"}},
		{"non-ascii letters between terms", "graph–theory", []string{"graph", "theory"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract([]types.Document{doc("", tt.text)})
			assert.Equal(t, tt.want, types.Terms(got))
		})
	}
}

func TestExtractAccentedTitle(t *testing.T) {
	got := Extract([]types.Document{doc("Schrödinger equation", "naïvely großartige résumé")})
	assert.Equal(t, []types.KeywordEntry{{Term: "equation", Count: 1}}, got)
}

func TestExtractRanksByCountThenFirstOccurrence(t *testing.T) {
	docs := []types.Document{
		doc("Alpha beta", "gamma delta delta epsilon"),
		doc("zeta theta", "epsilon delta gamma"),
	}
	// alpha(1) gamma(2) delta(3) epsilon(2) theta(1); "beta" and "zeta" are too short.
	got := Extract(docs)
	want := []types.KeywordEntry{
		{Term: "delta", Count: 3},
		{Term: "gamma", Count: 2},
		{Term: "epsilon", Count: 2},
		{Term: "alpha", Count: 1},
		{Term: "theta", Count: 1},
	}
	assert.Equal(t, want, got)
}

func TestExtractBoundedToLimit(t *testing.T) {
	var words []string
	for i := 0; i < 20; i++ {
		words = append(words, "word"+strings.Repeat(string(rune('a'+i)), 2))
	}
	got := Extract([]types.Document{doc("", strings.Join(words, " "))})
	require.Len(t, got, Limit)
	assert.Equal(t, words[:Limit], types.Terms(got))
}

func TestExtractSortedProperty(t *testing.T) {
	var docs []types.Document
	for i := 0; i < 12; i++ {
		docs = append(docs, doc(
			fmt.Sprintf("Learning systems %d", i),
			strings.Repeat("network ", i%4)+strings.Repeat("quantum ", i%3)+"results",
		))
	}
	got := Extract(docs)
	require.LessOrEqual(t, len(got), Limit)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Count, got[i].Count)
	}
	for _, e := range got {
		assert.GreaterOrEqual(t, len(e.Term), MinLength)
		assert.Positive(t, e.Count)
		assert.Equal(t, strings.ToLower(e.Term), e.Term)
	}
}

func TestExtractQuantumScenario(t *testing.T) {
	docs := []types.Document{{
		Title:     "Quantum Computing Advances",
		Summary:   "Researchers announce breakthrough quantum algorithm results",
		Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Link:      "http://x",
	}}
	got := Extract(docs)

	// "quantum" appears in both title and summary; every other term ties at
	// one and keeps first-occurrence order.
	want := []types.KeywordEntry{
		{Term: "quantum", Count: 2},
		{Term: "computing", Count: 1},
		{Term: "advances", Count: 1},
		{Term: "researchers", Count: 1},
		{Term: "announce", Count: 1},
	}
	assert.Equal(t, want, got)
}
