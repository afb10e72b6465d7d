// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/internal/chat"
	"github.com/pdiddy/research-agent/internal/generate"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/internal/settings"
	"github.com/pdiddy/research-agent/internal/store"
	"github.com/pdiddy/research-agent/pkg/types"
)

var testDocs = []types.Document{
	{Title: "Quantum Computing Advances", Summary: "Researchers announce breakthrough quantum algorithm results", Link: "http://x"},
}

type fakeSource struct {
	mu    sync.Mutex
	docs  []types.Document
	err   error
	topic string
	max   int
}

func (f *fakeSource) Fetch(_ context.Context, topic string, n int) ([]types.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topic, f.max = topic, n
	if f.err != nil {
		return nil, &search.FetchError{Topic: topic, Err: f.err}
	}
	return f.docs, nil
}

type fakeGenerator struct{ err error }

func (g fakeGenerator) Generate(_ context.Context, kws []string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "**Title:** " + strings.Join(kws, " ") + "\n**Conclusion:**\nDone", nil
}

type harness struct {
	ts       *httptest.Server
	client   *http.Client
	store    *store.Store
	source   *fakeSource
	settings *settings.Store
}

func newHarness(t *testing.T, gen fakeGenerator) *harness {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "data.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	src := &fakeSource{docs: testDocs}
	cfgStore := settings.NewStore(filepath.Join(dir, "config.yaml"))
	orch := pipeline.New(src, gen, nil, pipeline.WithActionRecorder(st))
	router := chat.NewRouter(orch, cfgStore, nil, st, nil)

	srv := New(types.ServerConfig{}, Deps{
		Store: st, Settings: cfgStore, Orchestrator: orch, Chat: router,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{ts: ts, client: &http.Client{Jar: jar}, store: st, source: src, settings: cfgStore}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.store.CreateUser(context.Background(), "alice", "secret")
	require.NoError(t, err)
	resp := h.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (h *harness) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := h.client.Get(h.ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := h.client.PostForm(h.ts.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) postJSON(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := h.client.Post(h.ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	resp := h.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	for _, path := range []string{"/check-session", "/fetch-papers", "/analyze", "/innovate", "/run-agents", "/export-report", "/config"} {
		t.Run(path, func(t *testing.T) {
			resp := h.get(t, path)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Unauthorized", decode(t, resp)["error"])
		})
	}
	resp := h.postJSON(t, "/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterLoginLogout(t *testing.T) {
	h := newHarness(t, fakeGenerator{})

	resp := h.postForm(t, "/register", url.Values{"username": {"bob"}, "password": {"pw"}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.postJSON(t, "/register", `{"username":"bob","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = h.postForm(t, "/register", url.Values{"username": {"carol"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.postJSON(t, "/login", `{"username":"bob","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = h.postJSON(t, "/login", `{"username":"bob","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.get(t, "/check-session")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob", decode(t, resp)["username"])

	resp = h.get(t, "/logout")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.get(t, "/check-session")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetConfig(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	resp := h.postForm(t, "/set-config", url.Values{"topic": {"robotics"}, "max_results": {"101"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Max results cannot exceed 100", decode(t, resp)["error"])

	resp = h.postForm(t, "/set-config", url.Values{"topic": {"robotics"}, "max_results": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.postJSON(t, "/set-config", `{"topic":"robotics","max_results":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.postForm(t, "/set-config", url.Values{"topic": {"robotics"}, "max_results": {"100"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "✅ Config updated", decode(t, resp)["message"])

	saved, err := h.settings.Load()
	require.NoError(t, err)
	assert.Equal(t, types.Settings{Topic: "robotics", MaxResults: 100}, saved)

	resp = h.get(t, "/config")
	assert.Equal(t, "robotics", decode(t, resp)["topic"])
}

func TestFetchPapers_CapsMaxResults(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	resp := h.get(t, "/fetch-papers?topic=quantum&max_results=500")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "quantum", body["topic"])
	assert.Len(t, body["results"], 1)
	assert.Equal(t, 100, h.source.max)

	h.get(t, "/fetch-papers")
	assert.Equal(t, "AI", h.source.topic)
	assert.Equal(t, 5, h.source.max)
}

func TestAnalyze(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	resp := h.get(t, "/analyze?topic=quantum")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	kws := decode(t, resp)["top_keywords"].([]any)
	require.Len(t, kws, 5)
	first := kws[0].(map[string]any)
	assert.Equal(t, "quantum", first["term"])
	assert.Equal(t, float64(2), first["count"])
}

func TestAnalyze_ReportsFirstTwentyPapers(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	var docs []types.Document
	for i := 0; i < 20; i++ {
		docs = append(docs, types.Document{Title: "alpha"})
	}
	for i := 0; i < 10; i++ {
		docs = append(docs, types.Document{Title: "omega omega omega"})
	}
	h.source.docs = docs

	resp := h.get(t, "/analyze?max_results=30")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	kws := decode(t, resp)["top_keywords"].([]any)
	require.Len(t, kws, 1)
	assert.Equal(t, "alpha", kws[0].(map[string]any)["term"])

	resp = h.get(t, "/innovate?max_results=30")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["proposal"], "Innovation Proposal: omega alpha")
}

func TestInnovateFeedbackExport(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	resp := h.get(t, "/export-report")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.get(t, "/innovate?topic=quantum")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "quantum", body["topic"])
	assert.True(t, strings.HasPrefix(body["proposal"].(string), "# 💡 Innovation Proposal: quantum computing"))
	id := int64(body["proposal_id"].(float64))
	assert.Positive(t, id)

	resp = h.postJSON(t, "/feedback", `{"proposal_id":`+jsonInt(id)+`,"rating":2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.postJSON(t, "/feedback", `{"proposal_id":999,"rating":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.postJSON(t, "/feedback", `{"proposal_id":`+jsonInt(id)+`,"rating":-1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", decode(t, resp)["status"])

	p, err := h.store.LatestProposal(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, p.Rating)
	assert.Equal(t, types.RatingDown, *p.Rating)

	resp = h.get(t, "/export-report")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="latest_proposal.md"`, resp.Header.Get("Content-Disposition"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Research Proposal: quantum\n\n## Extracted Keywords:\n- quantum\n- computing\n"))
	assert.Contains(t, string(data), "## Proposal:\n**Title:** quantum computing advances researchers announce")

	actions, err := h.store.RecentAgentActions(context.Background(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, actions)
}

func TestRunAgents(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	resp := h.get(t, "/run-agents")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "gen ai", body["topic"])
	assert.Contains(t, body["proposal"], "## 🔚 Conclusion")
}

func TestPipelineErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *harness)
		gen    fakeGenerator
		status int
	}{
		{"fetch failure", func(h *harness) { h.source.err = errors.New("down") }, fakeGenerator{}, http.StatusBadGateway},
		{"no papers", func(h *harness) { h.source.docs = nil }, fakeGenerator{}, http.StatusNotFound},
		{"not enough keywords", func(h *harness) { h.source.docs = []types.Document{{Title: "single"}} }, fakeGenerator{}, http.StatusUnprocessableEntity},
		{"generation failure", func(*harness) {}, fakeGenerator{err: &generate.GenerationError{Reason: "backend call failed"}}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.gen)
			h.login(t)
			tt.setup(h)

			for _, path := range []string{"/innovate", "/run-agents"} {
				resp := h.get(t, path)
				assert.Equal(t, tt.status, resp.StatusCode, path)
			}
		})
	}
}

func TestChat(t *testing.T) {
	h := newHarness(t, fakeGenerator{})
	h.login(t)

	resp := h.postJSON(t, "/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.postJSON(t, "/chat", `{"message":"find papers"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "I found 1 recent papers:\n- Quantum Computing Advances", body["response"])
	assert.Nil(t, body["proposal_id"])

	resp = h.postJSON(t, "/chat", `{"message":"give me an idea"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode(t, resp)
	assert.NotNil(t, body["proposal_id"])

	resp = h.get(t, "/chat/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode(t, resp)["history"].([]any)
	assert.Len(t, history, 4)
}

func TestRun_GracefulShutdown(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "data.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	src := &fakeSource{docs: testDocs}
	cfgStore := settings.NewStore(filepath.Join(dir, "config.yaml"))
	orch := pipeline.New(src, fakeGenerator{}, nil)
	refresher := pipeline.NewRefresher(orch, cfgStore, nil, pipeline.WithInterval(5*time.Millisecond))

	srv := New(types.ServerConfig{Addr: "127.0.0.1:0"}, Deps{
		Store: st, Settings: cfgStore, Orchestrator: orch, Refresher: refresher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, _, ok := refresher.Latest()
		return ok
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, refresher.Running())
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, clampInt("", 5, 100))
	assert.Equal(t, 5, clampInt("x", 5, 100))
	assert.Equal(t, 5, clampInt("-3", 5, 100))
	assert.Equal(t, 42, clampInt("42", 5, 100))
	assert.Equal(t, 100, clampInt("1000", 5, 100))
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
