package handlers

import (
	"context"

	"github.com/smc242/digtbot/internal/discord"
)

// NewCloseHandler returns the handler for the close command, which shuts the
// bot down gracefully.
func NewCloseHandler(deps HandlerDeps) discord.HandlerFunc {
	return closeHandler{deps}.Handle
}

type closeHandler struct {
	deps HandlerDeps
}

func (h closeHandler) Handle(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	log := h.deps.Logger.With("handler", "close")

	if err := discord.Reply(s, inv.ChannelID, "Shutting down..."); err != nil {
		log.ErrorContext(ctx, "Failed to send shutdown notice", "error", err, "channel_id", inv.ChannelID)
	}

	log.InfoContext(ctx, "Bot closed by owner", "user", inv.AuthorTag, "user_id", inv.AuthorID)
	h.deps.Shutdown()
	return nil
}
