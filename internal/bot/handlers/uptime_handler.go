package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/smc242/digtbot/internal/discord"
)

// NewUptimeHandler returns the handler for the uptime command.
func NewUptimeHandler(deps HandlerDeps) discord.HandlerFunc {
	return uptimeHandler{deps}.Handle
}

type uptimeHandler struct {
	deps HandlerDeps
}

func (h uptimeHandler) Handle(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	uptime := time.Since(h.deps.StartedAt).Round(time.Second)
	if err := discord.Reply(s, inv.ChannelID, fmt.Sprintf("Up for %s.", uptime)); err != nil {
		return fmt.Errorf("failed to send uptime: %w", err)
	}
	return nil
}
