// Package config handles configuration loading for the disclosure
// tracker. It supports YAML config files with environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Placeholder credential values shipped in the sample config. Startup
// fails while these are still in place.
const (
	PlaceholderEmail    = "PLACEHOLDER_EMAIL@gmail.com"
	PlaceholderPassword = "PLACEHOLDER_PASSWORD"
)

// Config represents the complete application configuration.
type Config struct {
	Tracker TrackerConfig `mapstructure:"tracker" yaml:"tracker"`
	Email   EmailConfig   `mapstructure:"email"   yaml:"email"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// TrackerConfig holds the disclosure site and polling settings.
type TrackerConfig struct {
	BaseURL              string `mapstructure:"base_url"               yaml:"base_url"`   // site landing page, also primes session cookies
	SearchURL            string `mapstructure:"search_url"             yaml:"search_url"` // search form endpoint
	LastName             string `mapstructure:"last_name"              yaml:"last_name"`  // optional last-name filter; empty queries the whole year
	FilingYear           int    `mapstructure:"filing_year"            yaml:"filing_year"`
	CheckIntervalSeconds int    `mapstructure:"check_interval_seconds" yaml:"check_interval_seconds"`
	DataFile             string `mapstructure:"data_file"              yaml:"data_file"` // persisted identity set + counts
}

// EmailConfig holds the outbound mail relay settings.
type EmailConfig struct {
	SMTPServer      string   `mapstructure:"smtp_server"      yaml:"smtp_server"`
	SMTPPort        int      `mapstructure:"smtp_port"        yaml:"smtp_port"`
	SenderEmail     string   `mapstructure:"sender_email"     yaml:"sender_email"`
	SenderPassword  string   `mapstructure:"sender_password"  yaml:"sender_password"`
	RecipientEmails []string `mapstructure:"recipient_emails" yaml:"recipient_emails"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
	File   string `mapstructure:"file"   yaml:"file"`   // optional log file, in addition to stderr
}

// CheckInterval returns the poll interval as a duration.
func (c TrackerConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.disclosure-tracker/config.yaml (home directory)
//  3. /etc/disclosure-tracker/config.yaml (system)
//
// Environment variables override config file values.
// Format: DISCTRACK_<SECTION>_<KEY>, e.g., DISCTRACK_EMAIL_SMTP_SERVER
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".disclosure-tracker"))
	v.AddConfigPath("/etc/disclosure-tracker")

	v.SetEnvPrefix("DISCTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("DISCTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// Validate checks that the configuration is usable for a live run.
// Placeholder mail credentials are fatal at startup: every later error
// class degrades and retries on the next cycle, but a tracker that can
// never notify would silently do nothing.
func (c *Config) Validate() error {
	if c.Email.SenderEmail == "" || c.Email.SenderEmail == PlaceholderEmail {
		return fmt.Errorf("email.sender_email is not configured")
	}
	if c.Email.SenderPassword == "" || c.Email.SenderPassword == PlaceholderPassword {
		return fmt.Errorf("email.sender_password is not configured")
	}
	if len(c.Email.RecipientEmails) == 0 ||
		(len(c.Email.RecipientEmails) == 1 && c.Email.RecipientEmails[0] == PlaceholderEmail) {
		return fmt.Errorf("email.recipient_emails is not configured")
	}
	if c.Tracker.CheckIntervalSeconds < 1 {
		return fmt.Errorf("tracker.check_interval_seconds must be at least 1")
	}
	if c.Tracker.BaseURL == "" || c.Tracker.SearchURL == "" {
		return fmt.Errorf("tracker.base_url and tracker.search_url are required")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Tracker defaults: the House clerk financial disclosure site.
	v.SetDefault("tracker.base_url", "https://disclosures-clerk.house.gov/FinancialDisclosure")
	v.SetDefault("tracker.search_url", "https://disclosures-clerk.house.gov/FinancialDisclosure/ViewDisclosurePTP")
	v.SetDefault("tracker.last_name", "")
	v.SetDefault("tracker.filing_year", time.Now().Year())
	v.SetDefault("tracker.check_interval_seconds", 60)
	v.SetDefault("tracker.data_file", "financial_disclosures.json")

	// Email defaults
	v.SetDefault("email.smtp_server", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.sender_email", PlaceholderEmail)
	v.SetDefault("email.sender_password", PlaceholderPassword)
	v.SetDefault("email.recipient_emails", []string{PlaceholderEmail})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DISCTRACK_EMAIL_SENDER_EMAIL"); v != "" {
		cfg.Email.SenderEmail = v
	}
	if v := os.Getenv("DISCTRACK_EMAIL_SENDER_PASSWORD"); v != "" {
		cfg.Email.SenderPassword = v
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
