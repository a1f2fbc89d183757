package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the CLI reads from the environment. A .env file is
// loaded by main before this is processed.
type Config struct {
	Portal   PortalConfig
	Calendar CalendarConfig
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// PortalConfig configures the connection to the club portal API.
type PortalConfig struct {
	BaseURL        string `envconfig:"PORTAL_BASE_URL" default:"http://localhost:8080/api"`
	SessionFile    string `envconfig:"PORTAL_SESSION_FILE" default:"session.json"`
	TimeoutSeconds int    `envconfig:"PORTAL_TIMEOUT_SECONDS" default:"15"`
}

// Timeout returns the request timeout as a time.Duration.
func (p PortalConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// CalendarConfig configures the personal-calendar sync targets.
type CalendarConfig struct {
	Timezone           string `envconfig:"PRIMARY_TIMEZONE" default:"Europe/Berlin"`
	StateFile          string `envconfig:"SYNC_STATE_FILE" default:"sync-state.json"`
	ICloudUsername     string `envconfig:"ICLOUD_USERNAME"`
	ICloudPassword     string `envconfig:"ICLOUD_APP_SPECIFIC_PASSWORD"`
	ICloudCalendar     string `envconfig:"ICLOUD_CALENDAR_NAME"`
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleCalendarID   string `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
}

// Location resolves the configured timezone.
func (c CalendarConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
