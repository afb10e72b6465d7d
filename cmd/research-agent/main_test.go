// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-agent/internal/settings"
	"github.com/pdiddy/research-agent/pkg/types"
)

func TestWriteDocuments(t *testing.T) {
	docs := []types.Document{{
		Title:     "Quantum Networks",
		Summary:   "Entanglement at scale",
		Published: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Link:      "http://arxiv.org/abs/2503.00001v1",
	}}

	var text bytes.Buffer
	require.NoError(t, writeDocuments(&text, "text", docs))
	assert.Equal(t, "1. Quantum Networks\n   published: 2025-03-01\n   http://arxiv.org/abs/2503.00001v1\n1 paper(s)\n", text.String())

	var js bytes.Buffer
	require.NoError(t, writeDocuments(&js, "json", docs))
	var decoded []types.Document
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, docs[0].Title, decoded[0].Title)

	var csl bytes.Buffer
	require.NoError(t, writeDocuments(&csl, "csl", docs))
	assert.Contains(t, csl.String(), "title: Quantum Networks")

	assert.Error(t, writeDocuments(&bytes.Buffer{}, "xml", docs))
}

func TestWriteProposal(t *testing.T) {
	p := types.Proposal{ID: 3, Topic: "quantum", Keywords: []string{"quantum", "networks"}, RawText: "**Title:** Q"}

	var md bytes.Buffer
	require.NoError(t, writeProposal(&md, "markdown", p))
	assert.Equal(t, "# Research Proposal: quantum\n\n## Extracted Keywords:\n- quantum\n- networks\n\n## Proposal:\n**Title:** Q", md.String())

	var y bytes.Buffer
	require.NoError(t, writeProposal(&y, "yaml", p))
	assert.True(t, strings.Contains(y.String(), "topic: quantum"))

	assert.Error(t, writeProposal(&bytes.Buffer{}, "pdf", p))
}

func TestTopicArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, settings.NewStore(path).Save(types.Settings{Topic: "robotics", MaxResults: 7}))
	cfg := types.AgentConfig{SettingsPath: path}

	topic, n, err := topicArgs(cfg, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "robotics", topic)
	assert.Equal(t, 7, n)

	topic, n, err = topicArgs(cfg, "quantum", 0)
	require.NoError(t, err)
	assert.Equal(t, "quantum", topic)
	assert.Equal(t, 7, n)

	topic, n, err = topicArgs(cfg, "", 500)
	require.NoError(t, err)
	assert.Equal(t, "robotics", topic)
	assert.Equal(t, 100, n)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "research-agent dev\n", out.String())
}
