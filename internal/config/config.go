// Package config provides configuration loading, validation, and management
// for the DIGT bot. Values come from defaults, a YAML config file, and
// BOT_-prefixed environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration indicates invalid or unloadable configuration.
var ErrConfiguration = errors.New("configuration error")

// Config holds all application configuration.
type Config struct {
	Log        LogConfig                  `mapstructure:"log"`
	Discord    DiscordConfig              `mapstructure:"discord"`
	Database   DatabaseConfig             `mapstructure:"database"`
	Extensions map[string]ExtensionConfig `mapstructure:"extensions"`
	Scheduler  SchedulerConfig            `mapstructure:"scheduler"`
	Gemini     GeminiConfig               `mapstructure:"gemini"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DiscordConfig holds the Discord connection and command settings.
type DiscordConfig struct {
	// TokenFile points at a plain-text file containing exactly the bot token.
	TokenFile     string   `mapstructure:"token_file"     validate:"required"`
	CommandPrefix string   `mapstructure:"command_prefix" validate:"required"`
	OwnerIDs      []string `mapstructure:"owner_ids"      validate:"required,min=1,dive,required"`
	// Statuses are rotated through the bot's presence by the presence task.
	Statuses []string `mapstructure:"statuses"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ExtensionConfig enables or disables a single extension.
type ExtensionConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SchedulerConfig holds the map of scheduled tasks keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// GeminiConfig holds settings for the Gemini client used by the ask
// extension. Token is only required when that extension is enabled.
type GeminiConfig struct {
	Token       string        `mapstructure:"token"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Instruction string        `mapstructure:"instruction" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
	MaxRetries  int           `mapstructure:"max_retries" validate:"min=0,max=10"`
}

// Validate checks the configuration, including the cross-field rules the
// struct tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.ExtensionEnabled("ask") && c.Gemini.Token == "" {
		return fmt.Errorf("gemini.token is required when the ask extension is enabled")
	}
	return nil
}

// ExtensionEnabled reports whether the named extension is enabled.
func (c *Config) ExtensionEnabled(name string) bool {
	ext, ok := c.Extensions[name]
	return ok && ext.Enabled
}

// IsOwner reports whether the given user ID is one of the configured bot
// owners. Owners are the only users allowed to run administrative commands.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.Discord.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
