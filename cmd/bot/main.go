// Package main contains the entrypoint for the DIGT Discord bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/smc242/digtbot/internal/bot"
	"github.com/smc242/digtbot/internal/bot/handlers"
	"github.com/smc242/digtbot/internal/bot/tasks"
	"github.com/smc242/digtbot/internal/config"
	"github.com/smc242/digtbot/internal/credential"
	"github.com/smc242/digtbot/internal/database"
	"github.com/smc242/digtbot/internal/discord"
	"github.com/smc242/digtbot/internal/extension"
	"github.com/smc242/digtbot/internal/extensions/ask"
	"github.com/smc242/digtbot/internal/extensions/reactionroles"
	"github.com/smc242/digtbot/internal/gemini"
	"github.com/smc242/digtbot/internal/logger"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// dispatcher, extensions, scheduler), handles graceful shutdown, and returns
// an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	// The close command cancels this context to shut the bot down.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	token, err := credential.Load(cfg.Discord.TokenFile)
	if err != nil {
		log.Error("Failed to load bot token", "path", cfg.Discord.TokenFile, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	session, err := discord.NewSession(token)
	if err != nil {
		log.Error("Failed to create Discord session", "error", err)
		return 1
	}

	dispatcher := discord.NewDispatcher(log, cfg.Discord.CommandPrefix)

	registry := extension.NewRegistry(log)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Dispatcher: dispatcher,
		Registry:   registry,
		Gateway:    session,
		Shutdown:   cancel,
		StartedAt:  time.Now(),
	}

	dispatcher.Use(logger.CommandMiddleware(log), handlers.AuditLog(hDeps))

	// Built-ins register first so extensions can never shadow them.
	for _, cmd := range handlers.RegisterAllCommands(hDeps) {
		if err := dispatcher.RegisterBuiltin(cmd); err != nil {
			log.Error("Failed to register built-in command", "command", cmd.Name, "error", err)
			return 1
		}
	}

	if cfg.ExtensionEnabled("reactionroles") {
		registry.Add("reactionroles", func() (extension.Extension, error) {
			return reactionroles.New(log, store), nil
		})
	}
	if cfg.ExtensionEnabled("ask") {
		registry.Add("ask", func() (extension.Extension, error) {
			client, err := gemini.NewClient(ctx, cfg.Gemini, log)
			if err != nil {
				return nil, err
			}
			return ask.New(log, client), nil
		})
	}
	registry.Load(session, dispatcher)

	session.AddHandler(dispatcher.HandleMessageCreate)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("Logged in", "bot_user", r.User.Username, "bot_id", r.User.ID)
		if len(cfg.Discord.Statuses) > 0 {
			if err := s.UpdateGameStatus(0, cfg.Discord.Statuses[0]); err != nil {
				log.Warn("Failed to set initial presence", "error", err)
			}
		}
	})

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Config:   cfg,
		Presence: session,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.New(log, session, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
