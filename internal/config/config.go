package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Mailbox  MailboxConfig
	SMTP     SMTPConfig
	AI       AIConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// MailboxConfig controls the ingestion pipeline.
type MailboxConfig struct {
	WorkerEnabled         bool
	PollIntervalSeconds   int
	AccountTimeoutSeconds int
	DialTimeoutSeconds    int
	CommandTimeoutSeconds int
}

// SMTPConfig holds outbound mail credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AIConfig points at the reply-assist service.
type AIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-core"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Mailbox: MailboxConfig{
			WorkerEnabled:         getEnvAsBool("MAILBOX_WORKER_ENABLED", true),
			PollIntervalSeconds:   getEnvAsInt("MAILBOX_POLL_INTERVAL_SECONDS", 60),
			AccountTimeoutSeconds: getEnvAsInt("MAILBOX_ACCOUNT_TIMEOUT_SECONDS", 120),
			DialTimeoutSeconds:    getEnvAsInt("MAILBOX_DIAL_TIMEOUT_SECONDS", 30),
			CommandTimeoutSeconds: getEnvAsInt("MAILBOX_COMMAND_TIMEOUT_SECONDS", 60),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "127.0.0.1"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "support@example.com"),
		},
		AI: AIConfig{
			BaseURL:        getEnv("AI_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 30),
		},
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

// PollInterval returns the mailbox poll cadence.
func (m MailboxConfig) PollInterval() time.Duration {
	if m.PollIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// AccountTimeout bounds one account's fetch.
func (m MailboxConfig) AccountTimeout() time.Duration {
	if m.AccountTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(m.AccountTimeoutSeconds) * time.Second
}

// DialTimeout returns the IMAP connect timeout.
func (m MailboxConfig) DialTimeout() time.Duration {
	if m.DialTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(m.DialTimeoutSeconds) * time.Second
}

// CommandTimeout returns the IMAP per-command timeout.
func (m MailboxConfig) CommandTimeout() time.Duration {
	if m.CommandTimeoutSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(m.CommandTimeoutSeconds) * time.Second
}

// Timeout returns the assist request timeout.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
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
