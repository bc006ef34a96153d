package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/smc242/digtbot/internal/database"
	"github.com/smc242/digtbot/internal/discord"
)

// OwnerOnly creates middleware that checks the invoking user against the
// configured owner list. Non-owners get a refusal and the handler never runs.
func OwnerOnly(deps HandlerDeps) discord.Middleware {
	return func(next discord.HandlerFunc) discord.HandlerFunc {
		return func(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
			if !deps.Config.IsOwner(inv.AuthorID) {
				log := deps.Logger.With("middleware", "owner_only")
				log.WarnContext(ctx, "Unauthorized admin command attempt",
					"command", inv.Command, "user_id", inv.AuthorID, "channel_id", inv.ChannelID)

				if err := discord.Reply(s, inv.ChannelID, "Only admins can use that command."); err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "channel_id", inv.ChannelID)
				}
				return nil
			}
			return next(ctx, s, inv)
		}
	}
}

// AuditLog creates middleware that records every command invocation in the
// audit log table. A failed write is logged but never blocks the command.
func AuditLog(deps HandlerDeps) discord.Middleware {
	return func(next discord.HandlerFunc) discord.HandlerFunc {
		return func(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
			entry := &database.CommandLog{
				Command:   inv.Command,
				Args:      strings.Join(inv.Args, " "),
				GuildID:   inv.GuildID,
				ChannelID: inv.ChannelID,
				UserID:    inv.AuthorID,
				InvokedAt: time.Now().UTC(),
			}

			saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := deps.Store.SaveCommandLog(saveCtx, entry); err != nil {
				deps.Logger.WarnContext(ctx, "Failed to record command in audit log",
					"command", inv.Command, "error", err)
			}

			return next(ctx, s, inv)
		}
	}
}
