// Package handlers contains the bot's built-in administrative commands,
// their registration logic, and dispatch middleware. Built-ins are exposed
// directly by the bot core, not through the extension mechanism.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/smc242/digtbot/internal/config"
	"github.com/smc242/digtbot/internal/database"
	"github.com/smc242/digtbot/internal/discord"
	"github.com/smc242/digtbot/internal/extension"
)

// Reloader reloads extensions against a gateway and command registrar.
// Implemented by extension.Registry.
type Reloader interface {
	Reload(gw extension.Gateway, reg extension.Registrar)
	Loaded() []string
	Failed() []extension.LoadError
}

// HandlerDeps provides dependencies for the built-in command handlers.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Dispatcher *discord.Dispatcher
	Registry   Reloader
	Gateway    extension.Gateway

	// Shutdown cancels the root context, stopping the orchestrator.
	Shutdown context.CancelFunc
	// StartedAt is when the process came up, for the uptime command.
	StartedAt time.Time
}
