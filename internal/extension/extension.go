// Package extension defines the loadable unit of bot functionality and the
// registry that assembles extensions at startup. Extensions are explicit
// values built from a config-driven factory list; there is no runtime
// discovery or reflection-based loading.
package extension

import (
	"github.com/smc242/digtbot/internal/discord"
)

// Extension is an independently loadable unit of bot functionality. It
// exposes zero or more commands and zero or more gateway listeners.
type Extension interface {
	// Name returns the unique extension name.
	Name() string

	// Commands returns the commands the extension provides.
	Commands() []discord.Command

	// Listeners returns discordgo event handler functions, in the shape
	// accepted by discordgo's Session.AddHandler.
	Listeners() []any
}

// Factory constructs an extension. A factory returning an error marks the
// extension as failed; the registry logs it and carries on.
type Factory func() (Extension, error)
