package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Breach lookups
	HIBPAPIKey    string // optional: without it the breach service answers 401 and lookups run degraded
	BreachAPIURL  string
	PwnedRangeURL string
	LookupTimeout time.Duration

	// Observability (optional)
	SentryDSN string

	// Backup snapshot storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	// Snapshots are disabled when S3Bucket is empty.
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Breachboard"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/breachboard.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Breach lookups
		HIBPAPIKey:    envString("HIBP_API_KEY", ""),
		BreachAPIURL:  envString("BREACH_API_URL", "https://haveibeenpwned.com/api/v3"),
		PwnedRangeURL: envString("PWNED_RANGE_URL", "https://api.pwnedpasswords.com/range"),
		LookupTimeout: envDuration("LOOKUP_TIMEOUT", 5*time.Second),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Backup snapshot storage
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	// Production: warn about modes that silently weaken lookups
	if cfg.IsProduction() && cfg.HIBPAPIKey == "" {
		slog.Warn("HIBP_API_KEY not set, email breach lookups will run in degraded mode")
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SnapshotsEnabled reports whether offsite backup snapshots are configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.S3Bucket != ""
}
