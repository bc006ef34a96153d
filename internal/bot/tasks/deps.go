// Package tasks implements the bot's scheduled tasks: database maintenance
// and presence rotation.
package tasks

import (
	"log/slog"

	"github.com/smc242/digtbot/internal/config"
	"github.com/smc242/digtbot/internal/database"
)

// PresenceUpdater is the slice of *discordgo.Session the presence task needs.
type PresenceUpdater interface {
	UpdateGameStatus(idle int, name string) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Config   *config.Config
	Presence PresenceUpdater
}
