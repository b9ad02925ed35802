// Package config holds the gateway configuration: a JSON5 file overlaid
// with CONCIERGE_* environment variables. Secrets are env-only and never
// persisted to the config file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// Config is the root configuration for the concierge gateway.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database,omitempty"`
	Providers ProvidersConfig `json:"providers"`
	Google    GoogleConfig    `json:"google,omitempty"`
	Channels  ChannelsConfig  `json:"channels,omitempty"`
	Assistant AssistantConfig `json:"assistant,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
}

// ServerConfig configures the webhook HTTP listener.
type ServerConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	MaxMessageChars int    `json:"max_message_chars"`
	RateLimitRPM    int    `json:"rate_limit_rpm"`
	WebhookToken    string `json:"-"` // from env CONCIERGE_WEBHOOK_TOKEN only
}

// DatabaseConfig selects the storage backend.
// PostgresDSN is never read from the config file, only from env.
type DatabaseConfig struct {
	Mode        string `json:"mode,omitempty"` // "sqlite" (default) or "postgres"
	PostgresDSN string `json:"-"`              // from env CONCIERGE_POSTGRES_DSN only
	SQLitePath  string `json:"sqlite_path,omitempty"`
}

// ProvidersConfig holds model and speech provider settings.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `json:"openai"`
	STT    STTConfig    `json:"stt,omitempty"`
}

// OpenAIConfig configures the chat and extraction model provider.
type OpenAIConfig struct {
	APIKey  string `json:"-"` // from env CONCIERGE_OPENAI_API_KEY only
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// STTConfig configures the speech-to-text transcription endpoint.
type STTConfig struct {
	Endpoint string `json:"endpoint,omitempty"`
	APIKey   string `json:"-"` // from env CONCIERGE_STT_API_KEY only
	Model    string `json:"model,omitempty"`
}

// GoogleConfig configures the Calendar and Gmail OAuth client.
type GoogleConfig struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"-"` // from env CONCIERGE_GOOGLE_CLIENT_SECRET only
	RedirectURL  string `json:"redirect_url,omitempty"`
}

// ChannelsConfig holds per-channel adapter settings.
type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram,omitempty"`
}

// TelegramConfig configures the Telegram long-poll adapter.
type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"-"` // from env CONCIERGE_TELEGRAM_TOKEN only
}

// AssistantConfig configures the conversational agent handler.
type AssistantConfig struct {
	Enabled      bool   `json:"enabled"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// TelemetryConfig configures the OTLP trace exporter.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	Insecure    bool   `json:"insecure,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            18890,
			MaxMessageChars: 8000,
			RateLimitRPM:    20,
		},
		Database: DatabaseConfig{
			Mode:       "sqlite",
			SQLitePath: "~/.concierge/concierge.db",
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
			STT: STTConfig{
				Model: "whisper-1",
			},
		},
		Assistant: AssistantConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "concierge",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is not an error; defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("CONCIERGE_HOST", &c.Server.Host)
	if v := os.Getenv("CONCIERGE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	envStr("CONCIERGE_WEBHOOK_TOKEN", &c.Server.WebhookToken)

	envStr("CONCIERGE_MODE", &c.Database.Mode)
	envStr("CONCIERGE_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("CONCIERGE_SQLITE_PATH", &c.Database.SQLitePath)

	envStr("CONCIERGE_OPENAI_API_KEY", &c.Providers.OpenAI.APIKey)
	envStr("CONCIERGE_OPENAI_BASE_URL", &c.Providers.OpenAI.BaseURL)
	envStr("CONCIERGE_OPENAI_MODEL", &c.Providers.OpenAI.Model)
	envStr("CONCIERGE_STT_ENDPOINT", &c.Providers.STT.Endpoint)
	envStr("CONCIERGE_STT_API_KEY", &c.Providers.STT.APIKey)

	envStr("CONCIERGE_GOOGLE_CLIENT_ID", &c.Google.ClientID)
	envStr("CONCIERGE_GOOGLE_CLIENT_SECRET", &c.Google.ClientSecret)
	envStr("CONCIERGE_GOOGLE_REDIRECT_URL", &c.Google.RedirectURL)

	envStr("CONCIERGE_TELEGRAM_TOKEN", &c.Channels.Telegram.Token)
	// Auto-enable the channel when credentials come via env.
	if c.Channels.Telegram.Token != "" {
		c.Channels.Telegram.Enabled = true
	}

	if v := os.Getenv("CONCIERGE_ASSISTANT_ENABLED"); v != "" {
		c.Assistant.Enabled = v == "true" || v == "1"
	}

	envStr("CONCIERGE_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("CONCIERGE_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("CONCIERGE_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CONCIERGE_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
}

// UsesPostgres reports whether the gateway runs against Postgres.
func (c *Config) UsesPostgres() bool {
	return strings.EqualFold(c.Database.Mode, "postgres") && c.Database.PostgresDSN != ""
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Save writes the config to disk. Secret fields carry `json:"-"` tags and
// never land in the file.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

const secretMask = "***"

// MaskedCopy returns a copy of the config with secret fields masked, for
// logging the effective configuration at startup.
func (c *Config) MaskedCopy() *Config {
	cp := *c
	maskNonEmpty(&cp.Server.WebhookToken)
	maskNonEmpty(&cp.Database.PostgresDSN)
	maskNonEmpty(&cp.Providers.OpenAI.APIKey)
	maskNonEmpty(&cp.Providers.STT.APIKey)
	maskNonEmpty(&cp.Google.ClientSecret)
	maskNonEmpty(&cp.Channels.Telegram.Token)
	return &cp
}

func maskNonEmpty(s *string) {
	if *s != "" {
		*s = secretMask
	}
}

// ExpandHome replaces leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
