// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/research-agent/pkg/types"
)

func TestToCSLItemArxiv(t *testing.T) {
	d := types.Document{
		Title:     "Attention Is All You Need",
		Summary:   "We propose a new architecture.",
		Published: time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		Link:      "http://arxiv.org/abs/1706.03762v1",
	}

	item := toCSLItem(d)

	if item.ID != "1706.03762" {
		t.Errorf("ID = %q, want %q", item.ID, "1706.03762")
	}
	if item.Type != "article" {
		t.Errorf("Type = %q, want article", item.Type)
	}
	if item.URL != d.Link {
		t.Errorf("URL = %q", item.URL)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2017 || item.Issued.DateParts[0][1] != 6 {
		t.Errorf("Issued = %#v", item.Issued)
	}
}

func TestToCSLItemNonArxivLink(t *testing.T) {
	item := toCSLItem(types.Document{Title: "X", Link: "https://example.com/x"})
	if item.ID != "https://example.com/x" {
		t.Errorf("ID = %q", item.ID)
	}
	if item.Issued != nil {
		t.Errorf("Issued should be nil for a zero date")
	}
}

func TestFormatCSL(t *testing.T) {
	docs := []types.Document{
		{Title: "Paper A", Link: "http://arxiv.org/abs/2301.07041v1"},
		{Title: "Paper B", Link: "http://arxiv.org/abs/2301.99999v2"},
	}

	var buf bytes.Buffer
	if err := FormatCSL(docs, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"id: \"2301.07041\"", "title: Paper A", "title: Paper B", "type: article"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
