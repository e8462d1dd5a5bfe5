package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "PUBLIC_BASE_URL", "THANK_YOU_URL", "PAYMENT_CURRENCY", "DEFAULT_DEPOSIT_AMOUNT",
		"GOOGLE_SHEET_NAME", "DATA_DIR", "REDIRECT_DELAY_SECONDS", "FIREBASE_CREDENTIALS",
		"FIREBASE_CREDENTIALS_PATH", "GOOGLE_CREDENTIALS", "LOG_LEVEL", "LOG_FORMAT",
		"ENV",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.GoogleSheetName != DefaultSheetName {
		t.Errorf("GoogleSheetName = %q; want %q", cfg.GoogleSheetName, DefaultSheetName)
	}
	if cfg.DefaultDepositAmount != 500 {
		t.Errorf("DefaultDepositAmount = %d; want 500", cfg.DefaultDepositAmount)
	}
	if cfg.PaymentCurrency != "usd" {
		t.Errorf("PaymentCurrency = %q; want usd", cfg.PaymentCurrency)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q; want data", cfg.DataDir)
	}
	if cfg.RedirectDelay != 5 {
		t.Errorf("RedirectDelay = %d; want 5", cfg.RedirectDelay)
	}
	if cfg.FirestoreConfigured() || cfg.SheetsConfigured() {
		t.Errorf("no backend credentials set, but a backend reports configured")
	}
	if cfg.IsProduction() {
		t.Errorf("IsProduction() = true with ENV unset")
	}
}

func TestFromEnvLogFormat(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		logFormat string
		want      string
	}{
		{name: "development defaults to console", env: "", logFormat: "", want: "console"},
		{name: "production defaults to json", env: "production", logFormat: "", want: "json"},
		{name: "explicit format wins in production", env: "production", logFormat: "Console", want: "console"},
		{name: "explicit format wins in development", env: "staging", logFormat: "json", want: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			t.Setenv("LOG_FORMAT", tt.logFormat)

			cfg, err := FromEnv()
			if err != nil {
				t.Fatalf("FromEnv() error = %v", err)
			}
			if cfg.LogFormat != tt.want {
				t.Errorf("LogFormat = %q; want %q", cfg.LogFormat, tt.want)
			}
			if got := cfg.IsProduction(); got != (tt.env == "production") {
				t.Errorf("IsProduction() = %v", got)
			}
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://pay.example.com/")
	t.Setenv("DEFAULT_DEPOSIT_AMOUNT", "250")
	t.Setenv("PAYMENT_CURRENCY", "EUR")
	t.Setenv("GOOGLE_CREDENTIALS", `{"type":"service_account"}`)
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "/etc/firebase.json")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.PublicBaseURL != "https://pay.example.com" {
		t.Errorf("PublicBaseURL = %q; want trailing slash trimmed", cfg.PublicBaseURL)
	}
	if cfg.DefaultDepositAmount != 250 {
		t.Errorf("DefaultDepositAmount = %d; want 250", cfg.DefaultDepositAmount)
	}
	if cfg.PaymentCurrency != "eur" {
		t.Errorf("PaymentCurrency = %q; want eur", cfg.PaymentCurrency)
	}
	if !cfg.SheetsConfigured() {
		t.Errorf("SheetsConfigured() = false; want true")
	}
	if !cfg.FirestoreConfigured() {
		t.Errorf("FirestoreConfigured() = false; want true")
	}
}

func TestFromEnvInvalidDeposit(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a number", value: "abc"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEFAULT_DEPOSIT_AMOUNT", tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("FromEnv() with DEFAULT_DEPOSIT_AMOUNT=%q succeeded; want error", tt.value)
			}
		})
	}
}
