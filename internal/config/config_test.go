package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
discord:
  owner_ids:
    - "395598378387636234"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Discord.TokenFile != "secrets/token.txt" {
		t.Errorf("Discord.TokenFile = %q", cfg.Discord.TokenFile)
	}
	if cfg.Discord.CommandPrefix != "silent_t!" {
		t.Errorf("Discord.CommandPrefix = %q", cfg.Discord.CommandPrefix)
	}
	if cfg.Database.Path != "storage.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.ExtensionEnabled("reactionroles") {
		t.Error("reactionroles should be enabled by default")
	}
	if cfg.ExtensionEnabled("ask") {
		t.Error("ask should be disabled by default")
	}
	if cfg.Gemini.Timeout != 2*time.Minute {
		t.Errorf("Gemini.Timeout = %v", cfg.Gemini.Timeout)
	}
	if task, ok := cfg.Scheduler.Tasks["db_maintenance"]; !ok || !task.Enabled {
		t.Errorf("db_maintenance task = %+v, want enabled", task)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: true
discord:
  command_prefix: "devt!"
  owner_ids:
    - "1"
    - "2"
  statuses:
    - "Planetside 2"
    - "with fire"
extensions:
  reactionroles:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Discord.CommandPrefix != "devt!" {
		t.Errorf("CommandPrefix = %q", cfg.Discord.CommandPrefix)
	}
	if len(cfg.Discord.OwnerIDs) != 2 {
		t.Errorf("OwnerIDs = %v", cfg.Discord.OwnerIDs)
	}
	if cfg.ExtensionEnabled("reactionroles") {
		t.Error("reactionroles should be disabled by the config file")
	}
	if len(cfg.Discord.Statuses) != 2 {
		t.Errorf("Statuses = %v", cfg.Discord.Statuses)
	}
}

func TestLoadConfigMissingOwners(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should fail without owner_ids")
	}
}

func TestLoadConfigInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
discord:
  owner_ids: ["1"]
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should reject an unknown log level")
	}
}

func TestLoadConfigAskRequiresGeminiToken(t *testing.T) {
	path := writeConfig(t, `
discord:
  owner_ids: ["1"]
extensions:
  ask:
    enabled: true
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() should require gemini.token when ask is enabled")
	}
}

func TestIsOwner(t *testing.T) {
	cfg := &Config{Discord: DiscordConfig{OwnerIDs: []string{"1", "42"}}}

	if !cfg.IsOwner("42") {
		t.Error("IsOwner(42) = false, want true")
	}
	if cfg.IsOwner("7") {
		t.Error("IsOwner(7) = true, want false")
	}
}
