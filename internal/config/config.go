package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const DefaultSheetName = "Website Payment Tracking"

type Config struct {
	Port          string
	PublicBaseURL string
	ThankYouURL   string
	RedirectDelay int
	Env           string

	StripeSecretKey      string
	StripeWebhookSecret  string
	PaymentCurrency      string
	DefaultDepositAmount int64

	FirebaseCredentialsJSON string
	FirebaseCredentialsPath string

	GoogleCredentialsJSON string
	GoogleSheetName       string
	GoogleSheetID         string

	DataDir string

	RedisURL    string
	DatabaseURL string
	AdminAPIKey string

	LogLevel  string
	LogFormat string
}

// FirestoreConfigured reports whether document database credentials were provided
func (c Config) FirestoreConfigured() bool {
	return c.FirebaseCredentialsJSON != "" || c.FirebaseCredentialsPath != ""
}

// SheetsConfigured reports whether spreadsheet credentials were provided
func (c Config) SheetsConfigured() bool {
	return c.GoogleCredentialsJSON != ""
}

// IsProduction reports whether ENV is "production"
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// FromEnv reads the process configuration. Call godotenv.Load before it
// so values from .env are visible.
func FromEnv() (Config, error) {
	var c Config
	c.Port = envOr("PORT", "8080")
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")
	c.ThankYouURL = envOr("THANK_YOU_URL", "/thank-you")
	c.Env = strings.TrimSpace(os.Getenv("ENV"))

	c.StripeSecretKey = strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	c.StripeWebhookSecret = strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET"))
	c.PaymentCurrency = strings.ToLower(envOr("PAYMENT_CURRENCY", "usd"))

	c.FirebaseCredentialsJSON = strings.TrimSpace(os.Getenv("FIREBASE_CREDENTIALS"))
	c.FirebaseCredentialsPath = strings.TrimSpace(os.Getenv("FIREBASE_CREDENTIALS_PATH"))

	c.GoogleCredentialsJSON = strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS"))
	c.GoogleSheetName = envOr("GOOGLE_SHEET_NAME", DefaultSheetName)
	c.GoogleSheetID = strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID"))

	c.DataDir = envOr("DATA_DIR", "data")

	c.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	c.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	c.AdminAPIKey = strings.TrimSpace(os.Getenv("ADMIN_API_KEY"))

	c.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	c.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if c.LogFormat == "" {
		c.LogFormat = "console"
		if c.IsProduction() {
			c.LogFormat = "json"
		}
	}

	var err error
	if c.DefaultDepositAmount, err = envInt64("DEFAULT_DEPOSIT_AMOUNT", 500); err != nil {
		return c, err
	}
	if c.DefaultDepositAmount <= 0 {
		return c, fmt.Errorf("DEFAULT_DEPOSIT_AMOUNT must be positive")
	}

	delay, err := envInt64("REDIRECT_DELAY_SECONDS", 5)
	if err != nil {
		return c, err
	}
	c.RedirectDelay = int(delay)

	return c, nil
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
