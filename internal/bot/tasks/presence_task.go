package tasks

import (
	"context"
	"fmt"
	"sync"
)

// newPresenceTask creates the scheduled task that rotates the bot's playing
// status through the configured list.
func newPresenceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "presence")

	var mu sync.Mutex
	next := 0

	return func(ctx context.Context) error {
		statuses := deps.Config.Discord.Statuses
		if len(statuses) == 0 {
			log.DebugContext(ctx, "No statuses configured, skipping presence update")
			return nil
		}

		mu.Lock()
		status := statuses[next%len(statuses)]
		next++
		mu.Unlock()

		if err := deps.Presence.UpdateGameStatus(0, status); err != nil {
			log.ErrorContext(ctx, "Failed to update presence", "status", status, "error", err)
			return fmt.Errorf("failed to update presence: %w", err)
		}

		log.DebugContext(ctx, "Presence updated", "status", status)
		return nil
	}
}
