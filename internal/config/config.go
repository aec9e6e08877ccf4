package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const TokenEnv = "NEWSDESK_API_TOKEN"

type NewsAPIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIToken  string `yaml:"api_token"`
	TokenFile string `yaml:"token_file"`
	PageSize  int    `yaml:"page_size"`
	Timeout   string `yaml:"timeout"`
}

type CacheConfig struct {
	Backend        string `yaml:"backend"`
	TTL            string `yaml:"ttl"`
	MaxEntries     int    `yaml:"max_entries"`
	RedisAddr      string `yaml:"redis_addr"`
	CoalesceMisses bool   `yaml:"coalesce_misses"`
}

type Config struct {
	Addr    string        `yaml:"addr"`
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
	Cache   CacheConfig   `yaml:"cache"`
}

// Token resolves the API token: config value, then env var, then token file.
// A missing token is not an error; upstream calls will simply fail.
func (c *Config) Token() string {
	if c.NewsAPI.APIToken != "" {
		return c.NewsAPI.APIToken
	}
	if tok := os.Getenv(TokenEnv); tok != "" {
		return tok
	}
	if c.NewsAPI.TokenFile != "" {
		data, err := os.ReadFile(c.NewsAPI.TokenFile)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}

func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// HTTPTimeout is zero (no client timeout) unless configured.
func (c *Config) HTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.NewsAPI.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsdesk", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads path (or the default path) over the embedded defaults. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Unmarshal over the defaults so partial files keep the rest.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	validBackends := map[string]bool{"memory": true, "badger": true, "redis": true, "hybrid": true}
	if !validBackends[cfg.Cache.Backend] {
		return fmt.Errorf("cache: unknown backend %q (valid: memory, badger, redis, hybrid)", cfg.Cache.Backend)
	}
	if cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache: max_entries must be positive, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.NewsAPI.PageSize <= 0 {
		return fmt.Errorf("newsapi: page_size must be positive, got %d", cfg.NewsAPI.PageSize)
	}
	u, err := url.Parse(cfg.NewsAPI.BaseURL)
	if err != nil {
		return fmt.Errorf("newsapi: invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("newsapi: base_url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}
