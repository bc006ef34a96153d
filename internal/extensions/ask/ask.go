// Package ask implements the AI chat extension: an ask command plus replies
// to messages that mention the bot.
package ask

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/smc242/digtbot/internal/discord"
	"github.com/smc242/digtbot/internal/gemini"
)

// Extension answers questions through the Gemini client.
type Extension struct {
	logger *slog.Logger
	client gemini.Client
}

// New creates the ask extension.
func New(logger *slog.Logger, client gemini.Client) *Extension {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extension{
		logger: logger.With("extension", "ask"),
		client: client,
	}
}

// Name returns the extension name.
func (e *Extension) Name() string {
	return "ask"
}

// Commands returns the ask command.
func (e *Extension) Commands() []discord.Command {
	return []discord.Command{
		{
			Name:        "ask",
			Description: "Ask the bot a question: ask <question>",
			Handler:     e.handleAsk,
		},
	}
}

// Listeners returns the mention handler.
func (e *Extension) Listeners() []any {
	return []any{
		func(s *discordgo.Session, m *discordgo.MessageCreate) {
			if m.Author == nil || s.State == nil || s.State.User == nil {
				return
			}
			if m.Author.ID == s.State.User.ID || m.Author.Bot {
				return
			}
			if !mentionsUser(m.Mentions, s.State.User.ID) {
				return
			}
			question := stripMentions(m.Content)
			e.respond(context.Background(), s, m.ChannelID, question)
		},
	}
}

func (e *Extension) handleAsk(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	if len(inv.Args) == 0 {
		return discord.Reply(s, inv.ChannelID, "Please provide a question.")
	}
	e.respond(ctx, s, inv.ChannelID, strings.Join(inv.Args, " "))
	return nil
}

// respond asks Gemini and posts the answer. AI failures get a friendly reply
// instead of the dispatcher's generic internal error.
func (e *Extension) respond(ctx context.Context, s discord.Session, channelID, question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		if err := discord.Reply(s, channelID, "Please provide a question."); err != nil {
			e.logger.ErrorContext(ctx, "Failed to send prompt request", "error", err, "channel_id", channelID)
		}
		return
	}

	answer, err := e.client.Reply(ctx, question)
	if err != nil {
		e.logger.ErrorContext(ctx, "AI reply failed", "error", err, "channel_id", channelID)
		if sendErr := discord.Reply(s, channelID, "Unable to process that right now. Try again later."); sendErr != nil {
			e.logger.ErrorContext(ctx, "Failed to send AI error notice", "error", sendErr, "channel_id", channelID)
		}
		return
	}

	// Discord rejects messages over 2000 characters
	if len(answer) > 2000 {
		answer = answer[:1997] + "..."
	}
	if err := discord.Reply(s, channelID, answer); err != nil {
		e.logger.ErrorContext(ctx, "Failed to send AI reply", "error", err, "channel_id", channelID)
	}
}

func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

// stripMentions removes mention tokens so only the question reaches the model.
func stripMentions(content string) string {
	fields := strings.Fields(content)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "<@") && strings.HasSuffix(f, ">") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
