// Package logger provides structured logging for the DIGT bot.
// It uses Go's slog package with configurable levels and formats.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/smc242/digtbot/internal/discord"
)

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// CommandMiddleware creates dispatch middleware that logs every command
// invocation with its origin and duration.
func CommandMiddleware(log *slog.Logger) discord.Middleware {
	return func(next discord.HandlerFunc) discord.HandlerFunc {
		return func(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
			startTime := time.Now()

			logEntry := log.With(
				"command", inv.Command,
				"guild_id", inv.GuildID,
				"channel_id", inv.ChannelID,
				"user_id", inv.AuthorID,
				"user", inv.AuthorTag,
			)
			logEntry.InfoContext(ctx, "Processing command")

			err := next(ctx, s, inv)

			logEntry.InfoContext(ctx, "Finished processing command", "duration", time.Since(startTime), "error", err)
			return err
		}
	}
}
