package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults applied by Validate when a field is left empty.
const (
	DefaultBackendTimeout  = 10 * time.Second
	DefaultLoginPath       = "/auth/login"
	DefaultPageSize        = 20
	MaxPageSize            = 100
	DefaultCookieName      = "shopadmin_session"
	DefaultSessionTTL      = 8 * time.Hour
	DefaultSessionEntries  = 1000
	DefaultMetricsPath     = "/metrics"
	minCSRFSecretLength    = 32
	defaultRateLimitMemory = 10000
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Backend  BackendConfig  `koanf:"backend"`
	Session  SessionConfig  `koanf:"session"`
	Database DatabaseConfig `koanf:"database"`
	Journal  JournalConfig  `koanf:"journal"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string          `koanf:"host"`
	Port       int             `koanf:"port"`
	Mode       string          `koanf:"mode"`
	CSRFSecret string          `koanf:"csrf_secret"`
	Timeout    string          `koanf:"timeout"`
	CORS       CORSConfig      `koanf:"cors"`
	RateLimit  RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings for the JSON API.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
	// MaxClients bounds the number of tracked client limiters.
	MaxClients int `koanf:"max_clients"`
}

// BackendConfig describes the commerce backend the console talks to.
type BackendConfig struct {
	BaseURL         string `koanf:"base_url"`
	Timeout         string `koanf:"timeout"`
	LoginPath       string `koanf:"login_path"`
	DefaultPageSize int    `koanf:"default_page_size"`
}

// SessionConfig holds operator session settings.
type SessionConfig struct {
	CookieName string `koanf:"cookie_name"`
	TTL        string `koanf:"ttl"`
	MaxEntries int    `koanf:"max_entries"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// JournalConfig controls the activity journal.
type JournalConfig struct {
	Enabled     bool   `koanf:"enabled"`
	AutoMigrate bool   `koanf:"auto_migrate"`
	Retention   string `koanf:"retention"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__BACKEND__BASE_URL=https://api.example.com overrides
// backend.base_url.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks supported values, normalizes whitespace and fills defaults.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.validateServer,
		c.validateBackend,
		c.validateSession,
		c.validateJournal,
		c.validateMetrics,
		c.validateLog,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	secret := strings.TrimSpace(c.Server.CSRFSecret)
	if c.Server.Mode == gin.ReleaseMode && len(secret) < minCSRFSecretLength {
		return fmt.Errorf("invalid server.csrf_secret: must be at least %d characters in release mode", minCSRFSecretLength)
	}
	c.Server.CSRFSecret = secret

	var err error
	if c.Server.Timeout, err = optionalDuration("server.timeout", c.Server.Timeout); err != nil {
		return err
	}
	if c.Server.CORS.MaxAge, err = optionalDuration("server.cors.max_age", c.Server.CORS.MaxAge); err != nil {
		return err
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
		if c.Server.RateLimit.MaxClients < 0 {
			return fmt.Errorf("invalid server.rate_limit.max_clients %d: must not be negative", c.Server.RateLimit.MaxClients)
		}
		if c.Server.RateLimit.MaxClients == 0 {
			c.Server.RateLimit.MaxClients = defaultRateLimitMemory
		}
	}
	return nil
}

func (c *Config) validateBackend() error {
	base := strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q: must be an absolute http or https URL", c.Backend.BaseURL)
	}
	c.Backend.BaseURL = base

	if c.Backend.Timeout, err = optionalDuration("backend.timeout", c.Backend.Timeout); err != nil {
		return err
	}

	login := strings.TrimSpace(c.Backend.LoginPath)
	if login == "" {
		login = DefaultLoginPath
	}
	if !strings.HasPrefix(login, "/") {
		return fmt.Errorf("invalid backend.login_path %q: must start with '/'", c.Backend.LoginPath)
	}
	c.Backend.LoginPath = login

	switch size := c.Backend.DefaultPageSize; {
	case size == 0:
		c.Backend.DefaultPageSize = DefaultPageSize
	case size < 1 || size > MaxPageSize:
		return fmt.Errorf("invalid backend.default_page_size %d: must be between 1 and %d", size, MaxPageSize)
	}
	return nil
}

// BackendTimeout returns the parsed backend timeout or its default.
func (c *Config) BackendTimeout() time.Duration {
	return durationOr(c.Backend.Timeout, DefaultBackendTimeout)
}

func (c *Config) validateSession() error {
	name := strings.TrimSpace(c.Session.CookieName)
	if name == "" {
		name = DefaultCookieName
	}
	if strings.ContainsAny(name, " ;,=\t") {
		return fmt.Errorf("invalid session.cookie_name %q", c.Session.CookieName)
	}
	c.Session.CookieName = name

	var err error
	if c.Session.TTL, err = optionalDuration("session.ttl", c.Session.TTL); err != nil {
		return err
	}

	switch {
	case c.Session.MaxEntries == 0:
		c.Session.MaxEntries = DefaultSessionEntries
	case c.Session.MaxEntries < 0:
		return fmt.Errorf("invalid session.max_entries %d: must be positive", c.Session.MaxEntries)
	}
	return nil
}

// SessionTTL returns the parsed session lifetime or its default.
func (c *Config) SessionTTL() time.Duration {
	return durationOr(c.Session.TTL, DefaultSessionTTL)
}

func (c *Config) validateJournal() error {
	var err error
	if c.Journal.Retention, err = optionalDuration("journal.retention", c.Journal.Retention); err != nil {
		return err
	}
	if !c.Journal.Enabled {
		return nil
	}
	return c.validateDatabase()
}

// JournalRetention returns the parsed retention, or 0 when entries are kept
// forever.
func (c *Config) JournalRetention() time.Duration {
	return durationOr(c.Journal.Retention, 0)
}

// validateDatabase runs only when the journal needs a database.
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	if c.Database.Driver == "sqlite" {
		path := strings.TrimSpace(c.Database.SQLite.Path)
		if path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = path
	}

	if c.Database.Driver == "postgres" {
		pg := &c.Database.Postgres
		pg.Host = strings.TrimSpace(pg.Host)
		pg.User = strings.TrimSpace(pg.User)
		pg.DBName = strings.TrimSpace(pg.DBName)
		pg.SSLMode = strings.TrimSpace(pg.SSLMode)

		if pg.Host == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if pg.Port < 1 || pg.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
		}
		if pg.User == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		if pg.DBName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		switch pg.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if c.Server.Mode == gin.ReleaseMode {
			switch pg.SSLMode {
			case "require", "verify-ca", "verify-full":
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}
	}

	var err error
	c.Database.Pool.ConnMaxLifetime, err = optionalDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime)
	return err
}

func (c *Config) validateMetrics() error {
	path := strings.TrimSpace(c.Metrics.Path)
	if path == "" {
		path = DefaultMetricsPath
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid metrics.path %q: must start with '/'", c.Metrics.Path)
	}
	c.Metrics.Path = path
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

// optionalDuration trims v and, when non-empty, requires a positive Go
// duration.
func optionalDuration(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	if d <= 0 {
		return "", fmt.Errorf("invalid %s %q: must be greater than 0", field, v)
	}
	return v, nil
}

func durationOr(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
