package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (optional)
// 3. BOT_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow missing config file; defaults and environment still apply
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	// Discord defaults; the prefix matches the original DIGT bot
	v.SetDefault("discord.token_file", "secrets/token.txt")
	v.SetDefault("discord.command_prefix", "silent_t!")
	v.SetDefault("discord.statuses", []string{"Planetside 2"})

	// Database defaults
	v.SetDefault("database.path", "storage.db")

	// Extension defaults
	v.SetDefault("extensions.reactionroles.enabled", true)
	v.SetDefault("extensions.ask.enabled", false)

	// Scheduler defaults; schedules use the 6-field cron format with seconds
	v.SetDefault("scheduler.tasks.db_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.db_maintenance.schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks.presence.enabled", true)
	v.SetDefault("scheduler.tasks.presence.schedule", "0 */10 * * * *")

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.instruction", "You are the DIGT outfit's Discord bot. Answer briefly and helpfully.")
	v.SetDefault("gemini.timeout", 2*time.Minute)
	v.SetDefault("gemini.max_retries", 2)
}
