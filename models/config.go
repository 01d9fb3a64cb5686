package models

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile       = "studybot.yaml"
	DefaultMaxContentLength = 50000
	DefaultFreeTierLimit    = 5
	DefaultProviders        = "anthropic|proxy"
	DefaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	DefaultOpenAIModel      = "gpt-4o-mini"
	DefaultProxyURL         = "https://api.studybot.dev/v1/generate"
	DefaultMaxTokens        = 1024
)

// Config holds runtime configuration. Values come from the YAML file, then
// the environment, then CLI flags.
type Config struct {
	MaxContentLength int    `yaml:"max_content_length"`
	DBPath           string `yaml:"db_path"`
	CacheDir         string `yaml:"cache_dir"`
	CacheTTL         string `yaml:"cache_ttl"`
	RequestTimeout   string `yaml:"request_timeout"`
	DetailLevel      string `yaml:"detail_level"`
	FreeTierLimit    int    `yaml:"free_tier_limit"`
	Workers          int    `yaml:"workers"`

	// Providers is a "|" separated, ordered list: anthropic, openai, proxy, mock.
	Providers string `yaml:"providers"`

	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Proxy     ProxyConfig     `yaml:"proxy"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	BaseURL   string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type ProxyConfig struct {
	URL string `yaml:"url"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		MaxContentLength: DefaultMaxContentLength,
		CacheDir:         ".studybot-cache",
		CacheTTL:         "24h",
		RequestTimeout:   "60s",
		DetailLevel:      string(DetailStandard),
		FreeTierLimit:    DefaultFreeTierLimit,
		Workers:          4,
		Providers:        DefaultProviders,
		Anthropic: AnthropicConfig{
			Model:     DefaultAnthropicModel,
			MaxTokens: DefaultMaxTokens,
		},
		OpenAI: OpenAIConfig{
			Model: DefaultOpenAIModel,
		},
		Proxy: ProxyConfig{
			URL: DefaultProxyURL,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Providers = getenv("STUDYBOT_PROVIDERS", c.Providers)
	c.DBPath = getenv("STUDYBOT_DB_PATH", c.DBPath)
	c.CacheDir = getenv("STUDYBOT_CACHE_DIR", c.CacheDir)
	c.CacheTTL = getenv("STUDYBOT_CACHE_TTL", c.CacheTTL)
	c.RequestTimeout = getenv("STUDYBOT_REQUEST_TIMEOUT", c.RequestTimeout)
	c.DetailLevel = getenv("STUDYBOT_DETAIL_LEVEL", c.DetailLevel)
	c.MaxContentLength = getenvInt("STUDYBOT_MAX_CONTENT_LENGTH", c.MaxContentLength)
	c.FreeTierLimit = getenvInt("STUDYBOT_FREE_TIER_LIMIT", c.FreeTierLimit)
	c.Workers = getenvInt("STUDYBOT_WORKERS", c.Workers)

	c.Anthropic.APIKey = getenv("ANTHROPIC_API_KEY", c.Anthropic.APIKey)
	c.Anthropic.Model = getenv("STUDYBOT_ANTHROPIC_MODEL", c.Anthropic.Model)
	c.Anthropic.BaseURL = getenv("STUDYBOT_ANTHROPIC_BASE_URL", c.Anthropic.BaseURL)
	c.OpenAI.APIKey = getenv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getenv("STUDYBOT_OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.BaseURL = getenv("STUDYBOT_OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.Proxy.URL = getenv("STUDYBOT_PROXY_URL", c.Proxy.URL)
}

// Validate rejects values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("max_content_length must be positive, got %d", c.MaxContentLength)
	}
	if c.FreeTierLimit < 0 {
		return fmt.Errorf("free_tier_limit must not be negative, got %d", c.FreeTierLimit)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if _, err := c.CacheTTLDuration(); err != nil {
		return err
	}
	if _, err := c.RequestTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

func (c *Config) CacheTTLDuration() (time.Duration, error) {
	return parseDuration("cache_ttl", c.CacheTTL, 24*time.Hour)
}

func (c *Config) RequestTimeoutDuration() (time.Duration, error) {
	return parseDuration("request_timeout", c.RequestTimeout, 60*time.Second)
}

func parseDuration(name, v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
