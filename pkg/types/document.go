// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-agent pipeline:
// fetched documents, keyword statistics, generated proposals, runtime
// settings, and configuration.
package types

import "time"

// Document is a paper returned by the paper source. It is never modified
// after the fetch that produced it.
type Document struct {
	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract with whitespace collapsed.
	Summary string `json:"summary" yaml:"summary"`

	// Published is the publication or preprint date.
	Published time.Time `json:"published" yaml:"published"`

	// Link points at the paper's landing page.
	Link string `json:"link" yaml:"link"`
}

// KeywordEntry is one ranked term from keyword extraction.
type KeywordEntry struct {
	// Term is a lowercase run of at least five ASCII letters.
	Term string `json:"term" yaml:"term"`

	// Count is the number of occurrences across the analysed documents.
	Count int `json:"count" yaml:"count"`
}

// Terms returns the terms of entries in rank order.
func Terms(entries []KeywordEntry) []string {
	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		terms = append(terms, e.Term)
	}
	return terms
}
