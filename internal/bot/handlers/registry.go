package handlers

import (
	"github.com/smc242/digtbot/internal/discord"
)

// RegisterAllCommands returns the built-in administrative commands in
// registration order. Built-ins are registered before extensions and take
// precedence over identically named extension commands.
func RegisterAllCommands(deps HandlerDeps) []discord.Command {
	ownerOnly := []discord.Middleware{OwnerOnly(deps)}

	return []discord.Command{
		{
			Name:        "help",
			Description: "List available commands",
			Handler:     NewHelpHandler(deps),
		},
		{
			Name:        "uptime",
			Description: "Show how long the bot has been running",
			Handler:     NewUptimeHandler(deps),
		},
		{
			Name:        "extensions",
			Description: "List loaded and failed extensions (admin only)",
			Handler:     NewExtensionsHandler(deps),
			Middleware:  ownerOnly,
		},
		{
			Name:        "reload",
			Description: "Reload all extensions (admin only)",
			Handler:     NewReloadHandler(deps),
			Middleware:  ownerOnly,
		},
		{
			Name:        "close",
			Description: "Shut the bot down (admin only)",
			Handler:     NewCloseHandler(deps),
			Middleware:  ownerOnly,
		},
	}
}
