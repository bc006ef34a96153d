// Package bot implements the core bot lifecycle: the gateway connection and
// the scheduler run side by side until shutdown is requested.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Gateway is the connection lifecycle the orchestrator manages.
// *discordgo.Session satisfies this interface.
type Gateway interface {
	Open() error
	Close() error
}

// Bot ties the Discord gateway and the scheduler together and manages their
// lifecycle.
type Bot struct {
	logger    *slog.Logger
	gateway   Gateway
	scheduler *Scheduler
}

// New creates the bot orchestrator.
func New(logger *slog.Logger, gateway Gateway, scheduler *Scheduler) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		gateway:   gateway,
		scheduler: scheduler,
	}
}

// Run opens the gateway connection and starts the scheduler, then blocks
// until the context is cancelled or a component fails. A failed gateway open
// (including authentication failure) is returned as an error so the caller
// can exit non-zero.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Opening Discord gateway connection...")
		if err := b.gateway.Open(); err != nil {
			return fmt.Errorf("failed to open Discord gateway: %w", err)
		}
		b.logger.Info("Gateway connected.")

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, closing gateway...")

		if err := b.gateway.Close(); err != nil {
			b.logger.Error("Error closing gateway", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
