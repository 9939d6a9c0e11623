package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Persistence PersistenceConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Render      RenderConfig
	Export      ExportConfig
	Storage     StorageConfig
	Share       ShareConfig
	Telemetry   TelemetryConfig
	Swagger     SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// per owner and client IP; 0 disables the limit
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Persistence drivers
const (
	DriverKV       = "kv"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Key/value store backends
const (
	KVStoreMemory = "memory"
	KVStoreRedis  = "redis"
)

// PersistenceConfig selects the repository implementation
type PersistenceConfig struct {
	Driver  string // kv, postgres, sqlite
	KVStore string // memory, redis (kv driver only)
}

// UsesSQL reports whether repositories are backed by gorm
func (p PersistenceConfig) UsesSQL() bool {
	return p.Driver == DriverPostgres || p.Driver == DriverSQLite
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RenderConfig holds headless browser settings for the render host and rasterizer
type RenderConfig struct {
	ChromeURL     string // remote devtools websocket; empty launches a local browser
	ExecPath      string
	Headless      bool
	NoSandbox     bool
	DisableGPU    bool
	ViewportWidth int
	Scale         float64
	SettleDelay   time.Duration
	Timeout       time.Duration
}

// Archive backends
const (
	ArchiveNone       = "none"
	ArchiveFilesystem = "filesystem"
	ArchiveS3         = "s3"
)

// Lock backends
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// ExportConfig holds PDF export settings
type ExportConfig struct {
	Archive        string // none, filesystem, s3
	ArchivePath    string
	ArchiveBaseURL string
	RetentionDays  int
	Lock           string // memory, redis
	LockTTL        time.Duration
	LockWait       time.Duration
	// PDF exports per owner per window; 0 disables the limit
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
	KeyPrefix       string
}

// ShareConfig holds payment-app share link settings
type ShareConfig struct {
	PublicOrigin  string
	FallbackDelay time.Duration
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	Username   string
	Password   string
	AllowedIPs []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	Protocol          string  // OTLP transport: grpc or http (traces and metrics only)
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	LogsLevel         string
	// Database tracing options
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	// Continuous profiling
	ProfilingEnabled     bool
	ProfilingEndpoint    string
	ProfilingSpanProfile bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INVOICE_ prefix (e.g., INVOICE_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// booleans that default to true
	v.SetDefault("render.headless", true)
	v.SetDefault("render.disable_gpu", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Persistence: PersistenceConfig{
			Driver:  strings.ToLower(v.GetString("persistence.driver")),
			KVStore: strings.ToLower(v.GetString("persistence.kv_store")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Render: RenderConfig{
			ChromeURL:     v.GetString("render.chrome_url"),
			ExecPath:      v.GetString("render.exec_path"),
			Headless:      v.GetBool("render.headless"),
			NoSandbox:     v.GetBool("render.no_sandbox"),
			DisableGPU:    v.GetBool("render.disable_gpu"),
			ViewportWidth: v.GetInt("render.viewport_width"),
			Scale:         v.GetFloat64("render.scale"),
			SettleDelay:   v.GetDuration("render.settle_delay"),
			Timeout:       v.GetDuration("render.timeout"),
		},
		Export: ExportConfig{
			Archive:           strings.ToLower(v.GetString("export.archive")),
			ArchivePath:       v.GetString("export.archive_path"),
			ArchiveBaseURL:    v.GetString("export.archive_base_url"),
			RetentionDays:     v.GetInt("export.retention_days"),
			Lock:              strings.ToLower(v.GetString("export.lock")),
			LockTTL:           v.GetDuration("export.lock_ttl"),
			LockWait:          v.GetDuration("export.lock_wait"),
			RateLimitRequests: v.GetInt("export.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("export.rate_limit_window"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
			KeyPrefix:       v.GetString("storage.key_prefix"),
		},
		Share: ShareConfig{
			PublicOrigin:  strings.TrimRight(v.GetString("share.public_origin"), "/"),
			FallbackDelay: v.GetDuration("share.fallback_delay"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			Username:   v.GetString("swagger.username"),
			Password:   v.GetString("swagger.password"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:              v.GetBool("telemetry.enabled"),
			CollectorEndpoint:    v.GetString("telemetry.collector_endpoint"),
			Protocol:             strings.ToLower(v.GetString("telemetry.protocol")),
			SamplingRatio:        v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:          v.GetString("telemetry.service_name"),
			Insecure:             v.GetBool("telemetry.insecure"),
			MetricsEnabled:       v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:      v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:          v.GetBool("telemetry.logs_enabled"),
			LogsLevel:            v.GetString("telemetry.logs_level"),
			DBTraceEnabled:       v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:         v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh:    v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:     v.GetBool("telemetry.profiling_enabled"),
			ProfilingEndpoint:    v.GetString("telemetry.profiling_endpoint"),
			ProfilingSpanProfile: v.GetBool("telemetry.profiling_span_profile"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "invoicesxpert"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// exports hold the connection open while the browser renders
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Owner-ID"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Persistence.Driver == "" {
		cfg.Persistence.Driver = DriverKV
	}
	if cfg.Persistence.KVStore == "" {
		cfg.Persistence.KVStore = KVStoreMemory
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "invoicesxpert"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "invoicesxpert.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Render.ViewportWidth == 0 {
		cfg.Render.ViewportWidth = 1024
	}
	if cfg.Render.Scale < 2 {
		cfg.Render.Scale = 2
	}
	if cfg.Render.SettleDelay == 0 {
		cfg.Render.SettleDelay = 500 * time.Millisecond
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
	if cfg.Export.Archive == "" {
		cfg.Export.Archive = ArchiveNone
	}
	if cfg.Export.ArchivePath == "" {
		cfg.Export.ArchivePath = "./exports"
	}
	if cfg.Export.ArchiveBaseURL == "" {
		cfg.Export.ArchiveBaseURL = "/exports"
	}
	if cfg.Export.Lock == "" {
		cfg.Export.Lock = LockMemory
	}
	if cfg.Export.LockTTL == 0 {
		cfg.Export.LockTTL = 2 * time.Minute
	}
	if cfg.Export.LockWait == 0 {
		cfg.Export.LockWait = 45 * time.Second
	}
	if cfg.Export.RateLimitWindow == 0 {
		cfg.Export.RateLimitWindow = time.Minute
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "invoices"
	}
	if cfg.Share.FallbackDelay == 0 {
		cfg.Share.FallbackDelay = time.Second
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "invoicesxpert"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.ProfilingEndpoint == "" {
		cfg.Telemetry.ProfilingEndpoint = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Persistence.Driver {
	case DriverKV, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("persistence.driver must be one of kv, postgres, sqlite, got %q", c.Persistence.Driver)
	}
	switch c.Persistence.KVStore {
	case KVStoreMemory, KVStoreRedis:
	default:
		return fmt.Errorf("persistence.kv_store must be memory or redis, got %q", c.Persistence.KVStore)
	}
	switch c.Export.Archive {
	case ArchiveNone, ArchiveFilesystem, ArchiveS3:
	default:
		return fmt.Errorf("export.archive must be one of none, filesystem, s3, got %q", c.Export.Archive)
	}
	switch c.Export.Lock {
	case LockMemory, LockRedis:
	default:
		return fmt.Errorf("export.lock must be memory or redis, got %q", c.Export.Lock)
	}
	if c.Export.Archive == ArchiveS3 && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when export.archive is s3")
	}
	if c.HTTP.RateLimitRequests < 0 || c.Export.RateLimitRequests < 0 {
		return fmt.Errorf("rate_limit_requests cannot be negative")
	}
	if (c.Swagger.Username == "") != (c.Swagger.Password == "") {
		return fmt.Errorf("swagger.username and swagger.password must be set together")
	}
	if c.Export.RetentionDays < 0 {
		return fmt.Errorf("export.retention_days cannot be negative")
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Persistence.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		// a sandboxless local browser renders untrusted invoice content
		if c.Render.NoSandbox && c.Render.ChromeURL == "" {
			return fmt.Errorf("render.no_sandbox requires a remote render.chrome_url in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", c.Telemetry.Protocol)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
