// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"semantic-compiler/internal/domain"
	"semantic-compiler/internal/filter"
)

// Output formats for compiled explores.
const (
	OutputJSON = "json"
	OutputText = "text"
)

// Config holds warehouse conventions and CLI behaviour.
type Config struct {
	FieldQuote   string // identifier quote (default `"`)
	StringQuote  string // string literal quote (default `'`)
	StringEscape string // escape placed before a string quote inside a literal (default `'`)
	StartOfWeek  string // MONDAY..SUNDAY; empty keeps the Sunday default
	Timezone     string // IANA zone for relative date windows (default "UTC")
	LogLevel     string // log level: debug, info, warn, error (default "info")
	Output       string // "json" (default) or "text"
	NoColor      bool   // suppress ANSI codes in text output

	weekStart *domain.WeekDay
	location  *time.Location

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Quotes returns the warehouse quoting pair.
func (c *Config) Quotes() filter.Quotes {
	return filter.Quotes{Field: c.FieldQuote, String: c.StringQuote, StringEscape: c.StringEscape}
}

// WeekStart returns the configured first day of the week, or nil for the
// Sunday default.
func (c *Config) WeekStart() *domain.WeekDay {
	return c.weekStart
}

// Location returns the zone relative date windows are computed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// SetStartOfWeek parses and applies a start-of-week value. Empty clears it.
func (c *Config) SetStartOfWeek(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		c.StartOfWeek = ""
		c.weekStart = nil
		return nil
	}
	d, err := domain.ParseWeekDay(v)
	if err != nil {
		return err
	}
	c.StartOfWeek = d.String()
	c.weekStart = &d
	return nil
}

// SetTimezone parses and applies an IANA zone name.
func (c *Config) SetTimezone(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		v = "UTC"
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		return domain.ErrValidation("invalid timezone %q: %v", v, err)
	}
	c.Timezone = v
	c.location = loc
	return nil
}

// Renderer builds a filter renderer from the configuration.
func (c *Config) Renderer(opts ...filter.Option) *filter.Renderer {
	base := []filter.Option{
		filter.WithQuotes(c.Quotes()),
		filter.WithStartOfWeek(c.WeekStart()),
		filter.WithLocation(c.Location()),
	}
	return filter.NewRenderer(append(base, opts...)...)
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		FieldQuote:   os.Getenv("EXPLOREC_FIELD_QUOTE"),
		StringQuote:  os.Getenv("EXPLOREC_STRING_QUOTE"),
		StringEscape: os.Getenv("EXPLOREC_STRING_ESCAPE"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		Output:       strings.ToLower(strings.TrimSpace(os.Getenv("EXPLOREC_OUTPUT"))),
		NoColor:      parseBoolEnvDefault("NO_COLOR", false),
	}

	if err := cfg.SetStartOfWeek(os.Getenv("EXPLOREC_START_OF_WEEK")); err != nil {
		return nil, fmt.Errorf("EXPLOREC_START_OF_WEEK: %w", err)
	}
	if err := cfg.SetTimezone(os.Getenv("EXPLOREC_TIMEZONE")); err != nil {
		return nil, fmt.Errorf("EXPLOREC_TIMEZONE: %w", err)
	}

	// Defaults
	if cfg.FieldQuote == "" {
		cfg.FieldQuote = filter.DefaultQuotes.Field
	}
	if cfg.StringQuote == "" {
		cfg.StringQuote = filter.DefaultQuotes.String
	}
	if cfg.StringEscape == "" {
		cfg.StringEscape = cfg.StringQuote
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	switch cfg.Output {
	case "":
		cfg.Output = OutputJSON
	case OutputJSON, OutputText:
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown EXPLOREC_OUTPUT %q, using %q", cfg.Output, OutputJSON))
		cfg.Output = OutputJSON
	}
	if cfg.FieldQuote == cfg.StringQuote {
		cfg.Warnings = append(cfg.Warnings,
			fmt.Sprintf("field quote and string quote are both %q; identifiers and literals will be indistinguishable", cfg.FieldQuote))
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for key, value := range values {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("setenv %s: %w", key, err)
		}
	}
	return nil
}
