package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notes/internal/preview"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig   `yaml:"app"`
	SQLite    SQLiteConfig        `yaml:"sqlite"`
	Auth      AuthConfig          `yaml:"auth"`
	Preview   preview.Preferences `yaml:"preview"`
	Trash     TrashConfig         `yaml:"trash"`
	Import    ImportConfig        `yaml:"import"`
	RateLimit RateLimitConfig     `yaml:"rate_limit"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Preview.Validate(); err != nil {
		return err
	}
	if err := c.Trash.Validate(); err != nil {
		return err
	}
	return c.RateLimit.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// AppendIDToTitle shows note IDs in preview titles, for debugging.
	AppendIDToTitle bool `yaml:"append_id_to_title"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TrashConfig controls automatic deletion of trashed notes.
type TrashConfig struct {
	// AutoDeleteAfter is how long a note stays in the trash.
	AutoDeleteAfter time.Duration `yaml:"auto_delete_after"`
	PurgeInterval   time.Duration `yaml:"purge_interval"`
}

// Validate validates the trash configuration.
func (c *TrashConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AutoDeleteAfter, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.PurgeInterval, validation.Required, validation.Min(time.Second)),
	)
}

// ImportConfig configures the inbox directory watched for Markdown notes.
// An empty Inbox disables the watcher.
type ImportConfig struct {
	Inbox string `yaml:"inbox"`
}

// RateLimitConfig limits API requests. A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.When(c.RequestsPerSecond > 0, validation.Required, validation.Min(1))),
	)
}

// Enabled returns true when requests are rate limited.
func (c *RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./notes.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Preview: preview.DefaultPreferences(),
		Trash: TrashConfig{
			AutoDeleteAfter: 7 * 24 * time.Hour,
			PurgeInterval:   time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}
