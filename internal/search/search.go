// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fetches research papers from arXiv and renders fetched
// batches for export.
package search

import (
	"fmt"
)

// FetchError reports a failed paper fetch. The pipeline passes it through
// unchanged so callers can pick a fallback message.
type FetchError struct {
	Topic string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching papers for %q: %v", e.Topic, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
