package handlers

import (
	"context"
	"fmt"

	"github.com/smc242/digtbot/internal/discord"
)

// NewReloadHandler returns the handler for the reload command. Reload runs on
// the dispatch path itself, which serializes it with event handling.
func NewReloadHandler(deps HandlerDeps) discord.HandlerFunc {
	return reloadHandler{deps}.Handle
}

type reloadHandler struct {
	deps HandlerDeps
}

func (h reloadHandler) Handle(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	log := h.deps.Logger.With("handler", "reload")
	log.InfoContext(ctx, "Owner requested extension reload", "user_id", inv.AuthorID)

	h.deps.Registry.Reload(h.deps.Gateway, h.deps.Dispatcher)

	loaded := h.deps.Registry.Loaded()
	failed := h.deps.Registry.Failed()

	reply := fmt.Sprintf("Reloaded %d extension(s).", len(loaded))
	if len(failed) > 0 {
		reply += fmt.Sprintf(" %d failed to load; see `%sextensions`.", len(failed), h.deps.Dispatcher.Prefix())
	}

	if err := discord.Reply(s, inv.ChannelID, reply); err != nil {
		return fmt.Errorf("failed to send reload summary: %w", err)
	}
	return nil
}
