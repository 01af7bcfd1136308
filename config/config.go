package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Redis     RedisConfig
	AWS       AWSConfig
	Logo      LogoConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	SecureCookies      bool
	MaxBodyBytes       int64
}

// SessionConfig controls studio sessions and their tokens.
type SessionConfig struct {
	TokenSecret     string
	TokenTTL        time.Duration
	IdleTTL         time.Duration // drafts untouched this long are discarded
	JanitorInterval time.Duration
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether Redis is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// AWSConfig holds AWS credentials and the logo bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	LogosBucket          string
	PresignExpireMinutes int
}

// LogoConfig selects the logo blob store.
type LogoConfig struct {
	Store    string // "memory" or "s3"
	BasePath string // URL prefix the memory store serves blobs under
	MaxBytes int64  // hard cap per stored blob; 0 means unbounded
}

// RateLimitConfig limits uploads and saves per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			SecureCookies:      getEnvBool("SECURE_COOKIES", false),
			MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 20<<20)),
		},
		Session: SessionConfig{
			TokenSecret:     getEnv("SESSION_TOKEN_SECRET", "change-me-in-production"),
			TokenTTL:        time.Duration(getEnvInt("SESSION_TOKEN_TTL_HOURS", 24)) * time.Hour,
			IdleTTL:         time.Duration(getEnvInt("SESSION_IDLE_TTL_MINUTES", 120)) * time.Minute,
			JanitorInterval: time.Duration(getEnvInt("SESSION_JANITOR_INTERVAL_SEC", 60)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			LogosBucket:          getEnv("AWS_S3_LOGOS_BUCKET", "campaign-logos"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 60),
		},
		Logo: LogoConfig{
			Store:    strings.ToLower(getEnv("LOGO_STORE", "memory")),
			BasePath: getEnv("LOGO_BASE_PATH", "/logos"),
			MaxBytes: int64(getEnvInt("LOGO_MAX_UPLOAD_MB", 10)) << 20,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
