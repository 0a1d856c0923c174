package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// persistence
	StoreDriver string // "postgres" | "memory"
	DBURL       string

	// admin credentials
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	AdminTokenTTLDays int

	// cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// media
	MediaDriver        string // "s3" | "local"
	MediaFolder        string
	MediaLocalDir      string
	MediaPublicBaseURL string
	S3Bucket           string
	S3Region           string
	S3AccessKeyID      string
	S3SecretAccessKey  string
	S3Endpoint         string

	// notifications
	MailProvider       string // "ses" | "log"
	MailFromAddress    string
	MailFromName       string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string

	// observability
	OTLPEndpoint   string
	TracingEnabled bool

	CORSOrigins    []string
	MaxUploadBytes int64
}

// ConfigError lists every required key that is missing. It is fatal at startup.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")

	if env != "prod" {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file loaded", "err", err)
		}
	}

	return Config{
		Env:  env,
		Port: getEnvInt("PORT", 8080),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DBURL:       os.Getenv("DATABASE_URL"),

		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("ADMIN_JWT_SECRET"),
		AdminTokenTTLDays: getEnvInt("ADMIN_TOKEN_TTL_DAYS", 7),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		MediaDriver:        strings.ToLower(getEnv("MEDIA_DRIVER", "local")),
		MediaFolder:        getEnv("MEDIA_FOLDER", "DevEvent"),
		MediaLocalDir:      getEnv("MEDIA_LOCAL_DIR", "./uploads"),
		MediaPublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", "/uploads"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:      os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),

		MailProvider:       strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
		MailFromAddress:    getEnv("MAIL_FROM_ADDRESS", "no-reply@devevent.local"),
		MailFromName:       getEnv("MAIL_FROM_NAME", "DevEvent"),
		SESRegion:          getEnv("SES_REGION", "us-east-1"),
		SESAccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),

		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TracingEnabled: getEnvBool("TRACING_ENABLED", false),

		CORSOrigins:    getEnvList("CORS_ORIGINS"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string

	if c.JWTSecret == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}
	if c.StoreDriver != "memory" && c.DBURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.AdminUsername == "" {
		missing = append(missing, "ADMIN_USERNAME")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
	}
	if c.MediaDriver == "s3" {
		if c.S3Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if c.S3AccessKeyID == "" {
			missing = append(missing, "S3_ACCESS_KEY_ID")
		}
		if c.S3SecretAccessKey == "" {
			missing = append(missing, "S3_SECRET_ACCESS_KEY")
		}
	}
	if c.MailProvider == "ses" {
		if c.SESAccessKeyID == "" {
			missing = append(missing, "SES_ACCESS_KEY_ID")
		}
		if c.SESSecretAccessKey == "" {
			missing = append(missing, "SES_SECRET_ACCESS_KEY")
		}
	}

	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}

	return nil
}

func (c Config) AdminTokenTTL() time.Duration {
	return time.Duration(c.AdminTokenTTLDays) * 24 * time.Hour
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
