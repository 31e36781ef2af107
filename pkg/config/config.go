// Package config loads the TradeMate server configuration.
//
// Configuration is layered:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. TRADEMATE_* environment overrides
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the TradeMate server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Platform      PlatformConfig      `yaml:"platform"`
	WhatsApp      WhatsAppConfig      `yaml:"whatsapp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Debug         DebugConfig         `yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`                         // default: 8000
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`         // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`       // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"` // default: 10s
	MaxBodySize     int64         `yaml:"max_body_size" env:"MAX_BODY_SIZE"`       // default: 1 MiB
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS"`         // default: ["*"]
}

// StorageConfig selects and configures the partner and interaction store.
type StorageConfig struct {
	Type     string         `yaml:"type" env:"STORAGE"`          // "memory", "postgres" or "sqlite"
	MaxSize  int            `yaml:"max_size" env:"STORAGE_SIZE"` // memory interactions kept, default: 10000
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig holds PostgreSQL settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn" env:"POSTGRES_DSN"`
	DSNFile        string `yaml:"dsn_file" env:"POSTGRES_DSN_FILE"`
	MaxConns       int32  `yaml:"max_conns" env:"POSTGRES_MAX_CONNS"` // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"POSTGRES_MIGRATE"`
}

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"` // default: "trademate.db"
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// Type is "none", "apikey", "jwt" or "partnerkey". Partner keys are
	// always accepted alongside apikey and jwt.
	Type    string         `yaml:"type" env:"AUTH_TYPE"`
	APIKeys []APIKeyConfig `yaml:"api_keys"`
	JWT     JWTConfig      `yaml:"jwt"`

	// KeyCacheTTL bounds how long a verified partner key skips bcrypt.
	KeyCacheTTL time.Duration   `yaml:"key_cache_ttl" env:"AUTH_KEY_CACHE_TTL"` // default: 5m
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// APIKeyConfig describes a static operator or integration key.
type APIKeyConfig struct {
	Key         string   `yaml:"key" json:"key"`
	KeyFile     string   `yaml:"key_file" json:"key_file"`
	Subject     string   `yaml:"subject" json:"subject"`
	PartnerID   string   `yaml:"partner_id" json:"partner_id"`
	ServiceTier string   `yaml:"service_tier" json:"service_tier"`
	Scopes      []string `yaml:"scopes" json:"scopes"`
}

// JWTConfig configures bearer JWT validation.
type JWTConfig struct {
	Issuer      string        `yaml:"issuer" env:"JWT_ISSUER"`
	Audience    string        `yaml:"audience" env:"JWT_AUDIENCE"`
	JWKSURL     string        `yaml:"jwks_url" env:"JWT_JWKS_URL"`
	TenantClaim string        `yaml:"tenant_claim"` // default: "partner_id"
	TierClaim   string        `yaml:"tier_claim"`   // default: "tier"
	CacheTTL    time.Duration `yaml:"cache_ttl"`    // default: 1h
}

// RateLimitConfig enables per-tier request limits. Tier limits default to
// the platform plans.
type RateLimitConfig struct {
	Enabled    bool           `yaml:"enabled" env:"RATE_LIMIT"`
	DefaultRPM int            `yaml:"default_rpm" env:"RATE_LIMIT_DEFAULT_RPM"` // default: 60
	Tiers      map[string]int `yaml:"tiers"`                                    // overrides, requests per minute
}

// PlatformConfig holds support behavior settings.
type PlatformConfig struct {
	EscalationKeywords []string `yaml:"escalation_keywords" env:"ESCALATION_KEYWORDS"`
	BcryptCost         int      `yaml:"bcrypt_cost" env:"BCRYPT_COST"` // default: bcrypt.DefaultCost
}

// WhatsAppConfig holds webhook settings.
type WhatsAppConfig struct {
	// VerifyTokenSuffix forms the default verify token: partner ID + suffix.
	VerifyTokenSuffix string `yaml:"verify_token_suffix" env:"WHATSAPP_VERIFY_TOKEN_SUFFIX"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"` // default: true
	Path    string `yaml:"path"`                          // default: "/metrics"
}

// TracingConfig enables OTLP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint" env:"OTLP_ENDPOINT"`
	ServiceName string  `yaml:"service_name"` // default: "trademate-supportdesk"
	SampleRatio float64 `yaml:"sample_ratio" env:"TRACE_SAMPLE_RATIO"`
}

// DebugConfig holds logging settings. TRADEMATE_DEBUG, TRADEMATE_LOG_LEVEL
// and TRADEMATE_LOG_FORMAT take precedence; see package debug.
type DebugConfig struct {
	Categories string `yaml:"categories"`
	Level      string `yaml:"level"`  // default: "INFO"
	Format     string `yaml:"format"` // "text" or "json", default: "text"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     1 << 20,
			CORSOrigins:     []string{"*"},
		},
		Storage: StorageConfig{
			Type:    "memory",
			MaxSize: 10000,
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
			SQLite: SQLiteConfig{
				Path: "trademate.db",
			},
		},
		Auth: AuthConfig{
			Type:        "none",
			KeyCacheTTL: 5 * time.Minute,
			JWT: JWTConfig{
				TenantClaim: "partner_id",
				TierClaim:   "tier",
				CacheTTL:    time.Hour,
			},
			RateLimit: RateLimitConfig{
				DefaultRPM: 60,
			},
		},
		Platform: PlatformConfig{
			EscalationKeywords: []string{"complaint", "fraud", "शिकायत", "धोखाधड़ी"},
			BcryptCost:         10,
		},
		WhatsApp: WhatsAppConfig{
			VerifyTokenSuffix: "_verify_token",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Tracing: TracingConfig{
				ServiceName: "trademate-supportdesk",
				SampleRatio: 1,
			},
		},
		Debug: DebugConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}
