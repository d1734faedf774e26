package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Load reads it explicitly at startup;
// nothing here runs as an import-time side effect.
type Config struct {
	Port        int
	BaseURL     string
	DatabaseURL string // postgres DSN; empty means local sqlite
	SQLitePath  string

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	JWKSURL    string

	SigningTokenTTL time.Duration

	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string

	PaymentGatewayURL    string
	PaymentGatewaySecret string
	PaymentWebhookSecret string

	PDFOutputDir string
}

// Load reads configuration from the environment, applying defaults. A .env
// file is honored when present.
func Load() (*Config, error) {
	// Ignore error: .env is optional.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvInt("PORT", 8080),
		BaseURL:              getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           getEnv("SQLITE_PATH", "inklane.db"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTIssuer:            getEnv("JWT_ISSUER", "inklane"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		JWKSURL:              os.Getenv("JWKS_URL"),
		SigningTokenTTL:      getEnvDuration("SIGNING_TOKEN_TTL", 30*24*time.Hour),
		SendgridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@inklane.app"),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Inklane"),
		PaymentGatewayURL:    os.Getenv("PAYMENT_GATEWAY_URL"),
		PaymentGatewaySecret: os.Getenv("PAYMENT_GATEWAY_SECRET"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		PDFOutputDir:         getEnv("PDF_OUTPUT_DIR", "artifacts"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return fmt.Errorf("JWT_SECRET or JWKS_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.SigningTokenTTL <= 0 {
		return fmt.Errorf("SIGNING_TOKEN_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
