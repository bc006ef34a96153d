package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/smc242/digtbot/internal/discord"
)

// NewHelpHandler returns the handler for the help command.
func NewHelpHandler(deps HandlerDeps) discord.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	prefix := h.deps.Dispatcher.Prefix()

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range h.deps.Dispatcher.Commands() {
		sb.WriteString(fmt.Sprintf("`%s%s` - %s\n", prefix, cmd.Name, cmd.Description))
	}

	if err := discord.Reply(s, inv.ChannelID, sb.String()); err != nil {
		return fmt.Errorf("failed to send help: %w", err)
	}
	return nil
}
