// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Recognised key files.
const (
	GroqAPIKey      = "groq-api-key"
	OpenAIAPIKey    = "openai-api-key"
	AnthropicAPIKey = "anthropic-api-key"
	SessionKey      = "session-key"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log *slog.Logger) (map[string]string, error) {
	log = logging.OrDiscard(log)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// KeyFor returns the secret file name holding the API key for provider.
func KeyFor(provider types.AIProvider) string {
	switch provider {
	case types.ProviderOpenAI:
		return OpenAIAPIKey
	case types.ProviderAnthropic:
		return AnthropicAPIKey
	default:
		return GroqAPIKey
	}
}

// Resolve returns explicit when set, else the named secret.
func Resolve(secrets map[string]string, explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	return secrets[name]
}
