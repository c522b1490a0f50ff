// Package config loads and validates portal configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Session   SessionConfig   `mapstructure:"session"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Firecrawl FirecrawlConfig `mapstructure:"firecrawl"`
	Collector CollectorConfig `mapstructure:"collector"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Storage   StorageConfig   `mapstructure:"storage"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	History   HistoryConfig   `mapstructure:"history"`
	DB        DBConfig        `mapstructure:"db"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int `mapstructure:"port"`
	ReadHeaderTimeoutSec   int `mapstructure:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// AuthConfig holds the single demo account.
type AuthConfig struct {
	EmployeeID   string `mapstructure:"employee_id"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
	DisplayName  string `mapstructure:"display_name"`
	Department   string `mapstructure:"department"`
}

// SessionConfig selects the session backend and cookie settings.
type SessionConfig struct {
	Backend      string      `mapstructure:"backend"`
	CookieName   string      `mapstructure:"cookie_name"`
	CookieSecure bool        `mapstructure:"cookie_secure"`
	Redis        RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis session backend.
type RedisConfig struct {
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// CrawlConfig governs the crawl bridge.
type CrawlConfig struct {
	Extractor         string  `mapstructure:"extractor"`
	DefaultKeyword    string  `mapstructure:"default_keyword"`
	SearchURLTemplate string  `mapstructure:"search_url_template"`
	MaxArticles       int     `mapstructure:"max_articles"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RatePerSecond     float64 `mapstructure:"rate_per_second"`
	Burst             int     `mapstructure:"burst"`
	Timezone          string  `mapstructure:"timezone"`
}

// FirecrawlConfig configures the hosted extraction backend.
type FirecrawlConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key"`
	PageTimeoutSeconds int    `mapstructure:"page_timeout_seconds"`
}

// CollectorConfig configures the colly backend.
type CollectorConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	AcceptLanguage string `mapstructure:"accept_language"`
}

// HeadlessConfig configures the chromedp backend.
type HeadlessConfig struct {
	MaxParallel   int    `mapstructure:"max_parallel"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	UserAgent     string `mapstructure:"user_agent"`
}

// StorageConfig selects where crawl results are archived.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"`
	Prefix          string `mapstructure:"prefix"`
	BaseDir         string `mapstructure:"base_dir"`
	GCSBucket       string `mapstructure:"gcs_bucket"`
	GCSCacheControl string `mapstructure:"gcs_cache_control"`
}

// PubSubConfig holds metadata for crawl notifications.
type PubSubConfig struct {
	Backend   string `mapstructure:"backend"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// HistoryConfig selects the search history backend.
type HistoryConfig struct {
	Backend  string `mapstructure:"backend"`
	PageSize int    `mapstructure:"page_size"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	Table                  string `mapstructure:"table"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMinutes int    `mapstructure:"max_conn_lifetime_minutes"`
}

// Load builds a Config from defaults, an optional file and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindConventionalEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// bindConventionalEnv maps unprefixed variables that deployment platforms
// and the Firecrawl docs use.
func bindConventionalEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":       {"PORTAL_SERVER_PORT", "PORT"},
		"firecrawl.api_key": {"PORTAL_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY"},
		"db.dsn":            {"PORTAL_DB_DSN", "DATABASE_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout_seconds", 10)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("auth.employee_id", "2024001")
	v.SetDefault("auth.password", "password")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.display_name", "김전파")
	v.SetDefault("auth.department", "전파기술팀")
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.cookie_name", "portal_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.redis.address", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.key_prefix", "portal:session:")
	v.SetDefault("session.redis.ttl_seconds", 0)
	v.SetDefault("crawl.extractor", "firecrawl")
	v.SetDefault("crawl.default_keyword", "ai")
	v.SetDefault("crawl.search_url_template", "https://www.google.com/search?q=%s&tbm=nws")
	v.SetDefault("crawl.max_articles", 10)
	v.SetDefault("crawl.timeout_seconds", 60)
	v.SetDefault("crawl.rate_per_second", 0)
	v.SetDefault("crawl.burst", 1)
	v.SetDefault("crawl.timezone", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev")
	v.SetDefault("firecrawl.api_key", "")
	v.SetDefault("firecrawl.page_timeout_seconds", 30)
	v.SetDefault("collector.user_agent", "trend-briefing-portal/1.0")
	v.SetDefault("collector.respect_robots", false)
	v.SetDefault("collector.timeout_seconds", 15)
	v.SetDefault("collector.accept_language", "ko-KR,ko;q=0.9,en;q=0.8")
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.user_agent", "")
	v.SetDefault("storage.backend", "none")
	v.SetDefault("storage.prefix", "crawls")
	v.SetDefault("storage.base_dir", "")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.gcs_cache_control", "")
	v.SetDefault("pubsub.backend", "none")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "crawl-events")
	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.page_size", 20)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "search_history")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_minutes", 30)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.EmployeeID == "" {
		return fmt.Errorf("auth.employee_id is required")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("auth.password or auth.password_hash is required")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.Redis.Address == "" {
			return fmt.Errorf("session.redis.address is required when session.backend=redis")
		}
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", c.Session.Backend)
	}
	switch c.Crawl.Extractor {
	case "firecrawl", "colly", "headless":
	default:
		return fmt.Errorf("crawl.extractor must be firecrawl, colly or headless, got %q", c.Crawl.Extractor)
	}
	if strings.Count(c.Crawl.SearchURLTemplate, "%s") != 1 {
		return fmt.Errorf("crawl.search_url_template must contain exactly one %%s")
	}
	if c.Crawl.MaxArticles <= 0 {
		return fmt.Errorf("crawl.max_articles must be > 0")
	}
	if c.Crawl.TimeoutSeconds < 0 {
		return fmt.Errorf("crawl.timeout_seconds must be >= 0")
	}
	if c.Crawl.RatePerSecond < 0 {
		return fmt.Errorf("crawl.rate_per_second must be >= 0")
	}
	if _, err := c.Crawl.Location(); err != nil {
		return err
	}
	if c.Headless.MaxParallel < 0 {
		return fmt.Errorf("headless.max_parallel must be >= 0")
	}
	switch c.Storage.Backend {
	case "none", "memory":
	case "local":
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir is required when storage.backend=local")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required when storage.backend=gcs")
		}
	default:
		return fmt.Errorf("storage.backend must be none, memory, local or gcs, got %q", c.Storage.Backend)
	}
	switch c.PubSub.Backend {
	case "none", "memory":
	case "gcp":
		if c.PubSub.ProjectID == "" || c.PubSub.TopicName == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic_name are required when pubsub.backend=gcp")
		}
	default:
		return fmt.Errorf("pubsub.backend must be none, memory or gcp, got %q", c.PubSub.Backend)
	}
	switch c.History.Backend {
	case "none", "memory":
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required when history.backend=postgres")
		}
	default:
		return fmt.Errorf("history.backend must be none, memory or postgres, got %q", c.History.Backend)
	}
	if c.History.PageSize <= 0 {
		return fmt.Errorf("history.page_size must be > 0")
	}
	return nil
}

// Location resolves crawl.timezone; empty means the server's local zone.
func (c CrawlConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("crawl.timezone: %w", err)
	}
	return loc, nil
}

// Timeout converts crawl.timeout_seconds to a duration.
func (c CrawlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL converts session.redis.ttl_seconds to a duration.
func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}
