// Package config loads runtime configuration from the environment and the
// optional YAML search file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config holds all runtime configuration.
type Config struct {
	Port        int
	DBPath      string
	DatabaseURL string // Postgres is used when set; SQLite otherwise.
	LogLevel    string

	Amadeus AmadeusConfig
	Email   EmailConfig

	ScheduleAt string        // daily sweep time, "HH:MM" local
	Pacing     time.Duration // delay before each provider call

	Search SearchConfig
}

// MinPacing is the shortest accepted delay between provider calls.
const MinPacing = time.Second

type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

type EmailConfig struct {
	Enabled    bool
	Sender     string
	Password   string
	Recipient  string
	SMTPHost   string
	SMTPPort   int
	PDFEnabled bool
}

// Complete reports whether every credential needed to send mail is present.
func (e EmailConfig) Complete() bool {
	return e.Sender != "" && e.Password != "" && e.Recipient != "" && e.SMTPHost != ""
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the environment (after godotenv has populated it) and the search
// config named by SEARCH_CONFIG, falling back to built-in search defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:      Get("DB_PATH", "data/flight_data.db"),
		DatabaseURL: Get("DATABASE_URL", ""),
		LogLevel:    Get("LOG_LEVEL", "info"),
		ScheduleAt:  Get("SCHEDULE_AT", "09:00"),
		Amadeus: AmadeusConfig{
			ClientID:     Get("AMADEUS_CLIENT_ID", ""),
			ClientSecret: Get("AMADEUS_CLIENT_SECRET", ""),
			BaseURL:      Get("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
			Timeout:      30 * time.Second,
		},
		Email: EmailConfig{
			Enabled:    parseBool(Get("SEND_EMAIL", "false")),
			Sender:     Get("SENDER_EMAIL", ""),
			Password:   Get("SENDER_EMAIL_PASSWORD", ""),
			Recipient:  Get("RECIPIENT_EMAIL", ""),
			SMTPHost:   Get("SMTP_HOST", "smtp.gmail.com"),
			PDFEnabled: parseBool(Get("PDF_ENABLED", "true")),
		},
	}

	var errs []error

	port, err := parseInt("PORT", Get("PORT", "5000"), 1, 65535)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Port = port

	smtpPort, err := parseInt("SMTP_PORT", Get("SMTP_PORT", "587"), 1, 65535)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Email.SMTPPort = smtpPort

	pacing, err := time.ParseDuration(Get("SWEEP_PACING", "1s"))
	if err != nil || pacing < MinPacing {
		errs = append(errs, &ConfigError{Field: "SWEEP_PACING", Message: fmt.Sprintf("must be a duration of at least %s", MinPacing)})
	}
	cfg.Pacing = pacing

	if _, _, err := ParseClock(cfg.ScheduleAt); err != nil {
		errs = append(errs, &ConfigError{Field: "SCHEDULE_AT", Message: err.Error()})
	}

	if path := Get("SEARCH_CONFIG", ""); path != "" {
		search, err := LoadSearchConfig(path)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Search = *search
		}
	} else {
		cfg.Search = DefaultSearchConfig(time.Now())
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("must be HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

func parseInt(field, raw string, min, max int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Field: field, Message: "must be a valid integer"}
	}
	if n < min || n > max {
		return 0, &ConfigError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return n, nil
}

func parseBool(raw string) bool {
	b, err := strconv.ParseBool(strings.ToLower(raw))
	return err == nil && b
}
