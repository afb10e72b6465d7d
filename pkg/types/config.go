package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-agent/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the arXiv paper source.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// RequestsPerSecond throttles calls to arXiv (default 1/3, the arXiv
	// API etiquette of one request every three seconds).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// MaxRetries bounds retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AIProvider identifies the text-generation service.
type AIProvider string

const (
	ProviderGroq      AIProvider = "groq"
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
)

// AIConfig holds settings for the proposal generator backend.
type AIConfig struct {
	// Provider selects the backend: groq, openai, or anthropic.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "llama-3.3-70b-versatile").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Temperature is the sampling temperature (default 0).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens bounds the generated proposal length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ServerConfig holds settings for the HTTP boundary.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// SessionTTL is how long a login session stays valid (default 24h).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`

	// CookieName is the session cookie name.
	CookieName string `json:"cookie_name" yaml:"cookie_name" mapstructure:"cookie_name"`

	// SecureCookies sets the Secure attribute on the session cookie.
	SecureCookies bool `json:"secure_cookies" yaml:"secure_cookies" mapstructure:"secure_cookies"`

	// RequestTimeout bounds a single pipeline request.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the database file (default "data.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// RefreshConfig holds settings for the background refresh loop.
type RefreshConfig struct {
	// Enabled turns the loop on for `serve`.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Interval is the delay between ticks (default 10s).
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
}

// AgentConfig groups all component configurations.
type AgentConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	AI      AIConfig      `json:"ai" yaml:"ai" mapstructure:"ai"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Refresh RefreshConfig `json:"refresh" yaml:"refresh" mapstructure:"refresh"`

	// SettingsPath is the runtime settings file (default "config.yaml").
	SettingsPath string `json:"settings_path" yaml:"settings_path" mapstructure:"settings_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}
