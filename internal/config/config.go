// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv directly.
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

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port string // default "8080"
	Env  string // "development" | "staging" | "production"

	// ── Airtable ──────────────────────────────────────────────────────────────
	AirtableToken   string
	AirtableBaseID  string
	AirtableTableID string

	// ── Resend ────────────────────────────────────────────────────────────────
	// Optional: when the API key is empty the submission handler skips the
	// acknowledgment email. The sweep cannot run without it — see validate.
	ResendAPIKey  string
	EmailFromAddr string // default "hello@notifications.swap-space.com"
	EmailFromName string // default "SwapSpace"
	EmailReplyTo  string // default "hello@swap-space.com"

	// ── Scheduler ─────────────────────────────────────────────────────────────
	// CronSecret guards the cron endpoint. Not required in development.
	CronSecret string

	// SweepInterval enables the in-process sweep runner when > 0. Zero means
	// the sweep only runs when an external scheduler hits the cron endpoint.
	SweepInterval time.Duration
}

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present, so
// plain `go run ./cmd/api` works in development; real environment variables
// always take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing file is fine

	c := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		AirtableToken:   os.Getenv("AIRTABLE_TOKEN"),
		AirtableBaseID:  os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTableID: os.Getenv("AIRTABLE_TABLE_ID"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		EmailFromAddr:   getEnv("EMAIL_FROM_ADDR", "hello@notifications.swap-space.com"),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "SwapSpace"),
		EmailReplyTo:    getEnv("EMAIL_REPLY_TO", "hello@swap-space.com"),
		CronSecret:      os.Getenv("CRON_SECRET"),
		SweepInterval:   getEnvAsDuration("SWEEP_INTERVAL", 0),
	}

	return c, c.validate()
}

// Development reports whether the process runs in local-development mode.
// Development relaxes the cron endpoint's bearer-secret requirement.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	var errs []error

	required := map[string]string{
		"AIRTABLE_TOKEN":    c.AirtableToken,
		"AIRTABLE_BASE_ID":  c.AirtableBaseID,
		"AIRTABLE_TABLE_ID": c.AirtableTableID,
	}

	for name, val := range required {
		if val == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", name))
		}
	}

	// The cron endpoint rejects everything without a secret to compare
	// against, so outside development the secret is required.
	if c.CronSecret == "" && !c.Development() {
		errs = append(errs, fmt.Errorf("missing required env var: CRON_SECRET"))
	}

	// The in-process sweep runner sends email on a timer; starting it without
	// a Resend key would make every run fail.
	if c.SweepInterval > 0 && c.ResendAPIKey == "" {
		errs = append(errs, fmt.Errorf("SWEEP_INTERVAL is set but RESEND_API_KEY is missing"))
	}

	return errors.Join(errs...)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is treated as seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(strings.TrimSpace(valueStr)); err == nil {
		return duration
	}
	return defaultValue
}
