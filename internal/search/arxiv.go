// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Defaults applied by NewArxivSource.
const (
	DefaultUserAgent         = "research-agent/0.1"
	DefaultRequestsPerSecond = 1.0 / 3
	DefaultTimeout           = 30 * time.Second
)

// ArxivSource fetches papers from the arXiv Atom API. Requests are throttled
// by Limiter and HTTP 429 responses are retried with backoff.
type ArxivSource struct {
	// BaseURL overrides the arXiv endpoint when set.
	BaseURL    string
	Client     *http.Client
	Limiter    *rate.Limiter
	UserAgent  string
	MaxRetries int
	Log        *slog.Logger
}

// NewArxivSource builds an ArxivSource from cfg, filling defaults. A
// non-empty cfg.BaseURL replaces the arXiv endpoint.
func NewArxivSource(cfg types.SearchConfig, log *slog.Logger) *ArxivSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &ArxivSource{
		BaseURL:    cfg.BaseURL,
		Client:     &http.Client{Timeout: timeout},
		Limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		UserAgent:  ua,
		MaxRetries: cfg.MaxRetries,
		Log:        logging.OrDiscard(log).With("component", "arxiv"),
	}
}

// Fetch returns up to maxResults documents matching topic. A feed with no
// entries yields an empty slice and no error. Every failure is a *FetchError.
func (s *ArxivSource) Fetch(ctx context.Context, topic string, maxResults int) ([]types.Document, error) {
	docs, err := s.fetch(ctx, topic, maxResults)
	if err != nil {
		return nil, &FetchError{Topic: topic, Err: err}
	}
	return docs, nil
}

func (s *ArxivSource) fetch(ctx context.Context, topic string, maxResults int) ([]types.Document, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("empty topic")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", maxResults)
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.queryURL(topic, maxResults), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	log := logging.OrDiscard(s.Log)
	log.Debug("querying arXiv", "topic", topic, "max_results", maxResults)

	resp, err := httputil.DoWithRetry(ctx, client, req, s.MaxRetries, log)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	docs := make([]types.Document, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		docs = append(docs, entry.document())
	}
	if len(docs) > maxResults {
		docs = docs[:maxResults]
	}
	log.Info("fetched papers", "topic", topic, "count", len(docs))
	return docs, nil
}

// queryURL constructs the query URL for an all-fields topic search.
func (s *ArxivSource) queryURL(topic string, maxResults int) string {
	base := s.BaseURL
	if base == "" {
		base = arxivAPIBase
	}
	q := url.Values{}
	q.Set("search_query", "all:"+topic)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(maxResults))
	return base + "?" + q.Encode()
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Links     []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

func (e arxivEntry) document() types.Document {
	d := types.Document{
		Title:   collapseSpace(e.Title),
		Summary: collapseSpace(e.Summary),
		Link:    e.link(),
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		d.Published = t
	}
	return d
}

// link prefers the alternate (landing page) link, then the first link,
// then the entry id.
func (e arxivEntry) link() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	if len(e.Links) > 0 && e.Links[0].Href != "" {
		return e.Links[0].Href
	}
	return strings.TrimSpace(e.ID)
}

// collapseSpace trims s and folds internal whitespace runs (arXiv wraps
// titles and abstracts across lines) into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from an abstract URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
