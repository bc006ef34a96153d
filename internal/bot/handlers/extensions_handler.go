package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/smc242/digtbot/internal/discord"
)

// NewExtensionsHandler returns the handler for the extensions command, which
// reports loaded and failed extensions.
func NewExtensionsHandler(deps HandlerDeps) discord.HandlerFunc {
	return extensionsHandler{deps}.Handle
}

type extensionsHandler struct {
	deps HandlerDeps
}

func (h extensionsHandler) Handle(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	loaded := h.deps.Registry.Loaded()
	failed := h.deps.Registry.Failed()

	var sb strings.Builder
	if len(loaded) == 0 {
		sb.WriteString("No extensions loaded.")
	} else {
		sb.WriteString(fmt.Sprintf("Loaded extensions (%d): %s", len(loaded), strings.Join(loaded, ", ")))
	}
	for _, f := range failed {
		sb.WriteString(fmt.Sprintf("\nFailed: %s (%v)", f.Name, f.Err))
	}

	if err := discord.Reply(s, inv.ChannelID, sb.String()); err != nil {
		return fmt.Errorf("failed to send extension list: %w", err)
	}
	return nil
}
