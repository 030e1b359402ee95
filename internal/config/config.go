package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Placeholder connection values used when the environment leaves them unset.
// The UI still renders with them; every storage call fails.
const (
	PlaceholderURL     = "https://example.supabase.co"
	PlaceholderAnonKey = "public-anon-key"
)

const (
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// Config represents application configuration
type Config struct {
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Backend  string         `mapstructure:"backend"`
	Server   ServerConfig   `mapstructure:"server"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	Log      LogConfig      `mapstructure:"log"`

	warnings []string
}

// SupabaseConfig is the hosted auth and data project
type SupabaseConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"anon_key"`
	Timeout string `mapstructure:"timeout"`
}

// ServerConfig represents the dashboard HTTP server
type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	SessionTTL    string `mapstructure:"session_ttl"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
	CSRFKey       string `mapstructure:"csrf_key"` // 32 bytes; empty disables CSRF protection
}

// CalendarConfig represents the displayed calendar
type CalendarConfig struct {
	Year         int    `mapstructure:"year"`
	UpcomingDays int    `mapstructure:"upcoming_days"`
	HolidaysFile string `mapstructure:"holidays_file"` // optional extra holidays merged into the built-in table
}

// LayoutConfig is the page header
type LayoutConfig struct {
	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("supabase.timeout", "10s")
	v.SetDefault("backend", BackendSupabase)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", "12h")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.csrf_key", "")

	v.SetDefault("calendar.year", 2026)
	v.SetDefault("calendar.upcoming_days", 7)
	v.SetDefault("calendar.holidays_file", "")

	v.SetDefault("layout.title", "Texas Roadhouse La Plata 297")
	v.SetDefault("layout.subtitle", "Shift calendar, store events, and team tasks")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file and environment.
// An explicit configPath must exist; otherwise the search path is optional.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.team-calendar")
		v.AddConfigPath("/etc/team-calendar")
	}

	// TEAM_CALENDAR_SERVER_ADDR etc.
	v.SetEnvPrefix("TEAM_CALENDAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The connection values keep the names the hosted project hands out
	if err := v.BindEnv("supabase.url", "SUPABASE_URL", "VITE_SUPABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()
	config.applyPlaceholders()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// applyPlaceholders fills missing connection values so the UI can still start
func (c *Config) applyPlaceholders() {
	if c.Backend != BackendSupabase {
		return
	}
	if c.Supabase.URL == "" {
		c.Supabase.URL = PlaceholderURL
		c.warnings = append(c.warnings, "SUPABASE_URL is not set; using placeholder "+PlaceholderURL)
	}
	if c.Supabase.AnonKey == "" {
		c.Supabase.AnonKey = PlaceholderAnonKey
		c.warnings = append(c.warnings, "SUPABASE_ANON_KEY is not set; using placeholder key")
	}
}

// Warnings returns problems that did not stop loading
func (c *Config) Warnings() []string {
	return c.warnings
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSupabase:
		if !strings.HasPrefix(c.Supabase.URL, "http://") && !strings.HasPrefix(c.Supabase.URL, "https://") {
			return fmt.Errorf("supabase.url must be an http(s) URL, got '%s'", c.Supabase.URL)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("backend must be '%s' or '%s', got '%s'", BackendSupabase, BackendMemory, c.Backend)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.CSRFKey != "" && len(c.Server.CSRFKey) != 32 {
		return fmt.Errorf("server.csrf_key must be exactly 32 bytes")
	}

	if c.Calendar.Year < 1 || c.Calendar.Year > 9999 {
		return fmt.Errorf("calendar.year must be between 1 and 9999")
	}
	if c.Calendar.UpcomingDays < 0 {
		return fmt.Errorf("calendar.upcoming_days must not be negative")
	}

	return nil
}

// GetTimeout returns the HTTP timeout for backend calls
func (c *SupabaseConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil || duration <= 0 {
		return 10 * time.Second
	}
	return duration
}

// GetSessionTTL returns how long an idle dashboard session is kept
func (c *ServerConfig) GetSessionTTL() time.Duration {
	if c.SessionTTL == "" {
		return 12 * time.Hour
	}
	duration, err := time.ParseDuration(c.SessionTTL)
	if err != nil || duration <= 0 {
		return 12 * time.Hour
	}
	return duration
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Supabase.URL = os.ExpandEnv(c.Supabase.URL)
	c.Supabase.AnonKey = os.ExpandEnv(c.Supabase.AnonKey)
	c.Server.CSRFKey = os.ExpandEnv(c.Server.CSRFKey)
	c.Calendar.HolidaysFile = os.ExpandEnv(c.Calendar.HolidaysFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
