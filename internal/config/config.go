package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Mail      MailConfig
	Recaptcha RecaptchaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// FrontOrigin is the public web client origin used for CORS and verification links.
	FrontOrigin string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	RunMigrations     bool
	ConnMaxIdleSec    int32
	ConnMaxLifeSec    int32
	ConnectTimeoutSec int32
	AcquireTimeoutSec int32
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

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret                     string
	TokenTTLHours                 int
	BcryptCost                    int
	VerificationCodeWindowMinutes int
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Transport string // api, smtp, log

	APIURL         string
	APIAppKey      string
	APISecretKey   string
	APISMTPAccount string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool

	From     string
	FromName string
	Timeout  time.Duration
}

// RecaptchaConfig configures the CAPTCHA gate in front of the auth routes.
type RecaptchaConfig struct {
	Enabled   bool
	Secret    string
	VerifyURL string
	ReplayTTL time.Duration
}

// Mail transports.
const (
	MailTransportAPI  = "api"
	MailTransportSMTP = "smtp"
	MailTransportLog  = "log"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "findteam-identity"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			FrontOrigin:           strings.TrimSuffix(getEnv("APP_FRONT_ORIGIN", "http://localhost:3000"), "/"),
		},
		Postgres: PostgresConfig{
			DSN:               os.Getenv("POSTGRES_DSN"),
			MaxConns:          int32(getEnvAsInt("POSTGRES_MAX_CONNS", 20)),
			MinConns:          int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:     getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:    int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:    int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectTimeoutSec: int32(getEnvAsInt("POSTGRES_CONNECT_TIMEOUT_SECONDS", 10)),
			AcquireTimeoutSec: int32(getEnvAsInt("POSTGRES_ACQUIRE_TIMEOUT_SECONDS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                     getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TokenTTLHours:                 getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:                    getEnvAsInt("AUTH_BCRYPT_COST", 10),
			VerificationCodeWindowMinutes: getEnvAsInt("AUTH_VERIFICATION_CODE_WINDOW_MINUTES", 60),
		},
		Mail: MailConfig{
			Transport:      strings.ToLower(getEnv("MAIL_TRANSPORT", MailTransportLog)),
			APIURL:         os.Getenv("MAIL_API_URL"),
			APIAppKey:      os.Getenv("MAIL_API_APP_KEY"),
			APISecretKey:   os.Getenv("MAIL_API_SECRET_KEY"),
			APISMTPAccount: os.Getenv("MAIL_API_SMTP_ACCOUNT"),
			SMTPHost:       os.Getenv("MAIL_SMTP_HOST"),
			SMTPPort:       getEnvAsInt("MAIL_SMTP_PORT", 587),
			SMTPUsername:   os.Getenv("MAIL_SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("MAIL_SMTP_PASSWORD"),
			SMTPTLS:        getEnvAsBool("MAIL_SMTP_TLS", true),
			From:           getEnv("MAIL_FROM", "welcome@find-team.com"),
			FromName:       getEnv("MAIL_FROM_NAME", "Find Team"),
			Timeout:        time.Duration(getEnvAsInt("MAIL_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Recaptcha: RecaptchaConfig{
			Enabled:   getEnvAsBool("RECAPTCHA_ENABLED", true),
			Secret:    os.Getenv("RECAPTCHA_SECRET"),
			VerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			ReplayTTL: time.Duration(getEnvAsInt("RECAPTCHA_REPLAY_TTL_SECONDS", 120)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Auth.VerificationCodeWindowMinutes <= 0 {
		return errors.New("AUTH_VERIFICATION_CODE_WINDOW_MINUTES must be positive")
	}
	if c.App.IsProduction() {
		if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "dev-secret" {
			return errors.New("AUTH_JWT_SECRET must be set in production")
		}
		if c.Recaptcha.Enabled && c.Recaptcha.Secret == "" {
			return errors.New("RECAPTCHA_SECRET must be set in production")
		}
	}
	switch c.Mail.Transport {
	case MailTransportAPI:
		if c.Mail.APIURL == "" || c.Mail.APISMTPAccount == "" {
			return errors.New("MAIL_API_URL and MAIL_API_SMTP_ACCOUNT are required for the api transport")
		}
	case MailTransportSMTP:
		if c.Mail.SMTPHost == "" {
			return errors.New("MAIL_SMTP_HOST is required for the smtp transport")
		}
	case MailTransportLog:
	default:
		return fmt.Errorf("unknown MAIL_TRANSPORT %q", c.Mail.Transport)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of issued access tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// VerificationWindow returns how long a verification code stays acceptable.
func (a AuthConfig) VerificationWindow() time.Duration {
	return time.Duration(a.VerificationCodeWindowMinutes) * time.Minute
}

// AcquireTimeout bounds how long a request waits for a pooled connection.
func (p PostgresConfig) AcquireTimeout() time.Duration {
	if p.AcquireTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(p.AcquireTimeoutSec) * time.Second
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
