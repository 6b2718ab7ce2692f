package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DevJWTSecret is the signing secret used when AUTH_JWT_SECRET is unset.
// It is accepted only when APP_ENV is development.
const DevJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Ledger       LedgerConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	SeedDemo       bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the report cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines how requesters are identified.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	ProfileHeader         string
	AdminTokenRequired    bool
}

// LedgerConfig holds the money movement rules.
type LedgerConfig struct {
	DepositCapRatio    decimal.Decimal
	DepositRequireSelf bool
	ReportDefaultLimit int
}

// CacheConfig controls report caching.
type CacheConfig struct {
	ReportsTTLSeconds int
}

// RateLimitConfig throttles mutating requests per requester. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS            float64
	Burst          int
	IdleTTLSeconds int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	capRatio, err := decimal.NewFromString(getEnv("LEDGER_DEPOSIT_CAP_RATIO", "0.25"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_DEPOSIT_CAP_RATIO: %w", err)
	}
	if capRatio.IsNegative() {
		return nil, fmt.Errorf("invalid LEDGER_DEPOSIT_CAP_RATIO: must not be negative")
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "contract-ledger"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3001"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			SeedDemo:       getEnvAsBool("LEDGER_SEED_DEMO", false),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", DevJWTSecret),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			ProfileHeader:         getEnv("AUTH_PROFILE_HEADER", "profile_id"),
			AdminTokenRequired:    getEnvAsBool("AUTH_ADMIN_TOKEN_REQUIRED", false),
		},
		Ledger: LedgerConfig{
			DepositCapRatio:    capRatio,
			DepositRequireSelf: getEnvAsBool("LEDGER_DEPOSIT_REQUIRE_SELF", false),
			ReportDefaultLimit: getEnvAsInt("LEDGER_REPORT_DEFAULT_LIMIT", 2),
		},
		Cache: CacheConfig{
			ReportsTTLSeconds: getEnvAsInt("CACHE_REPORTS_TTL_SECONDS", 60),
		},
		RateLimit: RateLimitConfig{
			RPS:            rps,
			Burst:          getEnvAsInt("RATE_LIMIT_BURST", 10),
			IdleTTLSeconds: getEnvAsInt("RATE_LIMIT_IDLE_TTL_SECONDS", 600),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.Auth.JWTSecret == DevJWTSecret && cfg.App.Env != "development" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV is %q", cfg.App.Env)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ReportsTTL returns how long report results stay cached.
func (c CacheConfig) ReportsTTL() time.Duration {
	if c.ReportsTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReportsTTLSeconds) * time.Second
}

// IdleTTL returns how long an unused per-requester bucket is kept.
func (r RateLimitConfig) IdleTTL() time.Duration {
	return time.Duration(r.IdleTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
