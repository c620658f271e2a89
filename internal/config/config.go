// Package config handles application configuration using Viper.
// Defaults, an optional YAML file and STYLIST_* environment variables are
// merged in that priority order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Content source strategies. See provider.New for how each one is built.
const (
	SourceAuto  = "auto"  // pasted content when present, live shop fetch otherwise
	SourceFetch = "fetch" // always fetch the shop search page
	SourcePaste = "paste" // only use content pasted into the request
	SourceNone  = "none"  // never supply content
)

// Config is the root configuration struct.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Source    SourceConfig    `mapstructure:"source"`
	Search    SearchConfig    `mapstructure:"search"`
	Advice    AdviceConfig    `mapstructure:"advice"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageConfig points at the SQLite file used for the model-call ledger.
// An empty DatabasePath turns call auditing off.
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMConfig selects one provider per text step. The outfit image is always
// rendered by Gemini, the only provider here that answers with TEXT+IMAGE.
type LLMConfig struct {
	ExtractionProvider string          `mapstructure:"extraction_provider"`
	AdviceProvider     string          `mapstructure:"advice_provider"`
	Timeout            time.Duration   `mapstructure:"timeout"`
	Anthropic          AnthropicConfig `mapstructure:"anthropic"`
	OpenAI             OpenAIConfig    `mapstructure:"openai"`
	Gemini             GeminiConfig    `mapstructure:"gemini"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	ImageModel string `mapstructure:"image_model"`
}

// SourceConfig controls where the raw search-results page comes from.
// SearchURL is a format string receiving the query-escaped search terms.
type SourceConfig struct {
	Strategy  string        `mapstructure:"strategy"`
	SearchURL string        `mapstructure:"search_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxBytes  int           `mapstructure:"max_bytes"`
}

type SearchConfig struct {
	MaxResults int `mapstructure:"max_results"` // 0 means no limit
}

type AdviceConfig struct {
	AllowDataURI      bool `mapstructure:"allow_data_uri"`
	MaxImageDimension int  `mapstructure:"max_image_dimension"`
	MaxImageBytes     int  `mapstructure:"max_image_bytes"`
	// AllowPrivateImageHosts lets item image downloads reach loopback and
	// private networks. Only for local development.
	AllowPrivateImageHosts bool `mapstructure:"allow_private_image_hosts"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/stylist-service.db")
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("auth.admin_keys", []string{})
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:9002"})
	v.SetDefault("llm.extraction_provider", "gemini")
	v.SetDefault("llm.advice_provider", "gemini")
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.openai.model", "gpt-4o")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.gemini.image_model", "gemini-2.0-flash-preview-image-generation")
	v.SetDefault("source.strategy", SourceAuto)
	v.SetDefault("source.search_url", "https://www.shoeby.nl/search?q=%s")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("source.timeout", 20*time.Second)
	v.SetDefault("source.max_bytes", 2<<20)
	v.SetDefault("search.max_results", 0)
	v.SetDefault("advice.allow_data_uri", true)
	v.SetDefault("advice.max_image_dimension", 1024)
	v.SetDefault("advice.max_image_bytes", 10<<20)
	v.SetDefault("advice.allow_private_image_hosts", false)
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("log.level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// A missing config file is fine: defaults and env vars are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// STYLIST_LLM_GEMINI_API_KEY=... → llm.gemini.api_key. AutomaticEnv only
	// sees keys viper already knows, hence the empty defaults above.
	v.SetEnvPrefix("STYLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Source.Strategy {
	case SourceAuto, SourceFetch, SourcePaste, SourceNone:
	default:
		return fmt.Errorf("unknown source strategy %q", c.Source.Strategy)
	}
	for _, p := range []string{c.LLM.ExtractionProvider, c.LLM.AdviceProvider} {
		switch p {
		case "anthropic", "openai", "gemini":
		default:
			return fmt.Errorf("unknown llm provider %q", p)
		}
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must not be negative")
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
