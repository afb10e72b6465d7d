// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings persists the runtime search parameters ({topic,
// max_results}) shared by the refresh loop, the chat router and the HTTP
// boundary.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

// Defaults used when no settings file exists.
const (
	DefaultTopic      = "AI"
	DefaultMaxResults = 5
	MaxResultsLimit   = 100
)

var (
	ErrInvalidMaxResults = fmt.Errorf("max_results must be between 1 and %d", MaxResultsLimit)
	ErrEmptyTopic        = errors.New("topic must not be empty")
)

// Defaults returns the settings used before anything is saved.
func Defaults() types.Settings {
	return types.Settings{Topic: DefaultTopic, MaxResults: DefaultMaxResults}
}

// Validate checks s against the allowed ranges.
func Validate(s types.Settings) error {
	if strings.TrimSpace(s.Topic) == "" {
		return ErrEmptyTopic
	}
	if s.MaxResults < 1 || s.MaxResults > MaxResultsLimit {
		return ErrInvalidMaxResults
	}
	return nil
}

// Store reads and writes settings as a YAML file. It is safe for
// concurrent use within one process.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the saved settings, or Defaults when the file does not exist.
// Missing fields in the file fall back to their defaults, and hand-edited
// values are brought back into range by Clamp.
func (s *Store) Load() (types.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return types.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	cur := Defaults()
	if err := yaml.Unmarshal(data, &cur); err != nil {
		return types.Settings{}, fmt.Errorf("parsing settings %s: %w", s.path, err)
	}
	return Clamp(cur), nil
}

// Clamp replaces a blank topic with DefaultTopic, a max_results below 1 with
// DefaultMaxResults, and caps max_results at MaxResultsLimit.
func Clamp(cur types.Settings) types.Settings {
	cur.Topic = strings.TrimSpace(cur.Topic)
	if cur.Topic == "" {
		cur.Topic = DefaultTopic
	}
	switch {
	case cur.MaxResults < 1:
		cur.MaxResults = DefaultMaxResults
	case cur.MaxResults > MaxResultsLimit:
		cur.MaxResults = MaxResultsLimit
	}
	return cur
}

// Save validates and writes next. The file is replaced atomically.
func (s *Store) Save(next types.Settings) error {
	if err := Validate(next); err != nil {
		return err
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
