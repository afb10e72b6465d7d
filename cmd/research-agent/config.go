// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/generate"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/internal/secrets"
	"github.com/pdiddy/research-agent/internal/settings"
	"github.com/pdiddy/research-agent/internal/store"
	"github.com/pdiddy/research-agent/pkg/types"
)

// setDefaults registers every config key so env overrides resolve during
// Unmarshal even when no config file sets them.
func setDefaults() {
	viper.SetDefault("search.base_url", "")
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "research-agent/0.1")
	viper.SetDefault("search.requests_per_second", 1.0/3)
	viper.SetDefault("search.max_retries", 3)

	viper.SetDefault("ai.provider", string(types.ProviderGroq))
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.temperature", 0.0)
	viper.SetDefault("ai.max_tokens", 0)
	viper.SetDefault("ai.timeout", 2*time.Minute)

	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("server.session_ttl", 24*time.Hour)
	viper.SetDefault("server.cookie_name", "research_agent_session")
	viper.SetDefault("server.secure_cookies", false)
	viper.SetDefault("server.request_timeout", 2*time.Minute)

	viper.SetDefault("refresh.enabled", true)
	viper.SetDefault("refresh.interval", pipeline.DefaultRefreshInterval)
}

// loadConfig decodes the resolved viper configuration and fills the AI key
// from .secrets/ when the config does not set one.
func loadConfig() (types.AgentConfig, error) {
	var cfg types.AgentConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = types.ProviderGroq
	}
	cfg.AI.APIKey = secrets.Resolve(loadedSecrets, cfg.AI.APIKey, secrets.KeyFor(cfg.AI.Provider))
	return cfg, nil
}

// newOrchestrator wires the arXiv source and, when withGenerator is set, the
// configured language model backend.
func newOrchestrator(cfg types.AgentConfig, withGenerator bool, opts ...pipeline.Option) (*pipeline.Orchestrator, error) {
	source := search.NewArxivSource(cfg.Search, logger)
	if !withGenerator {
		return pipeline.New(source, nil, logger, opts...), nil
	}

	backend, err := generate.NewBackend(cfg.AI)
	if err != nil {
		return nil, err
	}
	return pipeline.New(source, generate.New(backend, logger), logger, opts...), nil
}

func openStore(cfg types.AgentConfig) (*store.Store, error) {
	path := cfg.Store.Path
	if path == "" {
		path = "data.db"
	}
	return store.Open(path, logger)
}

func settingsStore(cfg types.AgentConfig) *settings.Store {
	path := cfg.SettingsPath
	if path == "" {
		path = "config.yaml"
	}
	return settings.NewStore(path)
}

// topicArgs reads --topic and --max-results, falling back to the runtime
// settings file for whichever is unset.
func topicArgs(cfg types.AgentConfig, topic string, maxResults int) (string, int, error) {
	if topic == "" || maxResults <= 0 {
		cur, err := settingsStore(cfg).Load()
		if err != nil {
			return "", 0, err
		}
		if topic == "" {
			topic = cur.Topic
		}
		if maxResults <= 0 {
			maxResults = cur.MaxResults
		}
	}
	if maxResults > settings.MaxResultsLimit {
		maxResults = settings.MaxResultsLimit
	}
	return topic, maxResults, nil
}
