package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFeedBaseURL = "https://news.google.com/rss/search"
	DefaultFeedQuery   = "rubber export disruption OR rubber tariff OR rubber shortage"
	DefaultCacheTTL    = 30 * time.Minute
)

type Config struct {
	AppPort string `yaml:"app_port"`

	FeedBaseURL string        `yaml:"feed_base_url"`
	FeedQuery   string        `yaml:"feed_query"`
	FeedTimeout time.Duration `yaml:"feed_timeout"`

	CacheTTL time.Duration `yaml:"cache_ttl"`

	// 以下均为可选，留空表示不启用
	RedisAddr   string `yaml:"redis_addr"`
	PostgresDSN string `yaml:"postgres_dsn"`
	RefreshCron string `yaml:"refresh_cron"`

	Debug bool `yaml:"debug"`
}

func defaults() *Config {
	return &Config{
		AppPort:     "9000",
		FeedBaseURL: DefaultFeedBaseURL,
		FeedQuery:   DefaultFeedQuery,
		CacheTTL:    DefaultCacheTTL,
	}
}

// Load 先读取 CONFIG_FILE 指定的 YAML（可选），再用环境变量覆盖
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.AppPort = getEnv("APP_PORT", cfg.AppPort)
	cfg.FeedBaseURL = getEnv("FEED_BASE_URL", cfg.FeedBaseURL)
	cfg.FeedQuery = getEnv("FEED_QUERY", cfg.FeedQuery)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.RefreshCron = getEnv("REFRESH_CRON", cfg.RefreshCron)

	var err error
	if cfg.FeedTimeout, err = getEnvDuration("FEED_TIMEOUT", cfg.FeedTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// Validate 检查 TTL、feed 地址与 cron 表达式
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return errors.New("config: cache ttl must be positive")
	}
	if c.FeedTimeout < 0 {
		return errors.New("config: feed timeout must not be negative")
	}
	if strings.TrimSpace(c.FeedQuery) == "" {
		return errors.New("config: feed query is required")
	}
	u, err := url.ParseRequestURI(c.FeedBaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("config: invalid feed url: %s", c.FeedBaseURL)
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("config: invalid refresh cron %q: %w", c.RefreshCron, err)
		}
	}
	return nil
}

// FeedURL 拼出带查询参数的 feed 地址，例如 ...?q=rubber+export+disruption+OR+...
func (c *Config) FeedURL() string {
	q := url.Values{"q": {c.FeedQuery}}.Encode()
	if strings.Contains(c.FeedBaseURL, "?") {
		return c.FeedBaseURL + "&" + q
	}
	return c.FeedBaseURL + "?" + q
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
