// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords ranks the long words that appear across a batch of
// documents. Terms are case-folded but otherwise left as written; there is
// no stemming, so the ranking stays stable for identical input.
package keywords

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	// Limit is the maximum number of entries Extract returns.
	Limit = 5

	// MinLength is the minimum term length in letters.
	MinLength = 5
)

// tokens splits lower-cased text into words. A word is a run of Unicode
// letters, digits and underscores; only words made entirely of at least
// MinLength ASCII letters are terms, so "model2", "deep_learning" and
// "schrödinger" contribute nothing.
func tokens(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	terms := words[:0]
	for _, w := range words {
		if len(w) >= MinLength && isASCIILower(w) {
			terms = append(terms, w)
		}
	}
	return terms
}

func isASCIILower(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// Extract counts terms across the title and summary of every document and
// returns the Limit most frequent, highest count first. Terms with equal
// counts keep the order in which they were first seen.
func Extract(docs []types.Document) []types.KeywordEntry {
	counts := make(map[string]int)
	var order []string

	for _, doc := range docs {
		text := strings.ToLower(doc.Title + " " + doc.Summary)
		for _, term := range tokens(text) {
			if counts[term] == 0 {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > Limit {
		order = order[:Limit]
	}

	entries := make([]types.KeywordEntry, 0, len(order))
	for _, term := range order {
		entries = append(entries, types.KeywordEntry{Term: term, Count: counts[term]})
	}
	return entries
}
