// Package reactionroles implements the role menu extension: a single bound
// message whose reactions grant and revoke roles. Designed for one server.
package reactionroles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/smc242/digtbot/internal/database"
	"github.com/smc242/digtbot/internal/discord"
)

const storeTimeout = 10 * time.Second

// Extension is the reaction-roles extension. Menu state lives in the store
// so it survives restarts.
type Extension struct {
	logger *slog.Logger
	store  database.Store
}

// New creates the reaction-roles extension.
func New(logger *slog.Logger, store database.Store) *Extension {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extension{
		logger: logger.With("extension", "reactionroles"),
		store:  store,
	}
}

// Name returns the extension name.
func (e *Extension) Name() string {
	return "reactionroles"
}

// Commands returns the role menu management commands.
func (e *Extension) Commands() []discord.Command {
	return []discord.Command{
		{
			Name:        "bind_message",
			Description: "Bind the role menu to a message: bind_message <channel_id> <message_id>",
			Handler:     e.handleBindMessage,
		},
		{
			Name:        "unbind_message",
			Description: "Unbind the current role menu message",
			Handler:     e.handleUnbindMessage,
		},
		{
			Name:        "add_reaction_role",
			Description: "Register a reaction role: add_reaction_role <role_id> <emoji>",
			Handler:     e.handleAddReactionRole,
		},
		{
			Name:        "remove_reaction_role",
			Description: "Remove a reaction role: remove_reaction_role <emoji>",
			Handler:     e.handleRemoveReactionRole,
		},
		{
			Name:        "roles",
			Description: "List registered reaction roles",
			Handler:     e.handleListRoles,
		},
	}
}

// Listeners returns the reaction event handlers.
func (e *Extension) Listeners() []any {
	return []any{
		func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
			if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
				return
			}
			e.grantRole(context.Background(), s, r.GuildID, r.UserID, r.ChannelID, r.MessageID, r.Emoji.APIName())
		},
		func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
			if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
				return
			}
			e.revokeRole(context.Background(), s, r.GuildID, r.UserID, r.ChannelID, r.MessageID, r.Emoji.APIName())
		},
	}
}

func (e *Extension) handleBindMessage(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	if len(inv.Args) != 2 {
		return discord.Reply(s, inv.ChannelID, ">={ Give me a channel ID and a message ID")
	}
	channelID, messageID := inv.Args[0], inv.Args[1]

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	binding, err := e.store.MenuBinding(storeCtx)
	if err != nil {
		return err
	}
	if binding != nil {
		return discord.Reply(s, inv.ChannelID, "Please unbind the current message first.")
	}

	// validate the target before binding; also confirms the bot can see it
	if _, err := s.ChannelMessage(channelID, messageID); err != nil {
		e.logger.WarnContext(ctx, "Failed to fetch menu message",
			"channel_id", channelID, "message_id", messageID, "error", err)
		return discord.Reply(s, inv.ChannelID, "Failed to bind to the message.")
	}

	if err := e.store.SaveMenuBinding(storeCtx, channelID, messageID); err != nil {
		return err
	}

	// seed the menu with the already-registered reactions
	roles, err := e.store.ReactionRoles(storeCtx)
	if err != nil {
		return err
	}
	for _, rr := range roles {
		if err := s.MessageReactionAdd(channelID, messageID, rr.EmojiID); err != nil {
			e.logger.WarnContext(ctx, "Failed to seed menu reaction",
				"emoji", rr.EmojiID, "error", err)
		}
	}

	return discord.Reply(s, inv.ChannelID, "Successfully bound the message.")
}

func (e *Extension) handleUnbindMessage(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	binding, err := e.store.MenuBinding(storeCtx)
	if err != nil {
		return err
	}
	if binding == nil {
		return discord.Reply(s, inv.ChannelID, "There is no bound message. Bind one with `bind_message`.")
	}

	if err := e.store.ClearMenuBinding(storeCtx); err != nil {
		return err
	}
	return discord.Reply(s, inv.ChannelID, "Unbound the message.")
}

func (e *Extension) handleAddReactionRole(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	if len(inv.Args) != 2 {
		return discord.Reply(s, inv.ChannelID, ">={ I need a role ID and an emoji")
	}
	roleID, emoji := inv.Args[0], normalizeEmoji(inv.Args[1])

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	binding, err := e.store.MenuBinding(storeCtx)
	if err != nil {
		return err
	}
	if binding == nil {
		return discord.Reply(s, inv.ChannelID, "Bind a message with `bind_message` before using this command.")
	}

	if err := e.store.AddReactionRole(storeCtx, emoji, roleID); err != nil {
		if errors.Is(err, database.ErrDuplicateMapping) {
			return discord.Reply(s, inv.ChannelID,
				"That emoji or role is already registered. Unregister it with `remove_reaction_role`.")
		}
		return err
	}

	if err := s.MessageReactionAdd(binding.ChannelID, binding.MessageID, emoji); err != nil {
		e.logger.WarnContext(ctx, "Failed to add menu reaction", "emoji", emoji, "error", err)
		return discord.Reply(s, inv.ChannelID, "Reaction failed. Check my permissions and retry.")
	}

	return discord.Reply(s, inv.ChannelID,
		fmt.Sprintf("I have added %s as the reaction for the <@&%s> role.", emoji, roleID))
}

func (e *Extension) handleRemoveReactionRole(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	if len(inv.Args) != 1 {
		return discord.Reply(s, inv.ChannelID, ">={ I need an emoji")
	}
	emoji := normalizeEmoji(inv.Args[0])

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	removed, err := e.store.RemoveReactionRole(storeCtx, emoji)
	if err != nil {
		return err
	}
	if !removed {
		return discord.Reply(s, inv.ChannelID, "That emoji is not registered.")
	}
	return discord.Reply(s, inv.ChannelID, fmt.Sprintf("Removed the reaction role for %s.", emoji))
}

func (e *Extension) handleListRoles(ctx context.Context, s discord.Session, inv *discord.Invocation) error {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	roles, err := e.store.ReactionRoles(storeCtx)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return discord.Reply(s, inv.ChannelID, "No reaction roles registered.")
	}

	var sb strings.Builder
	sb.WriteString("Reaction roles:\n")
	for _, rr := range roles {
		sb.WriteString(fmt.Sprintf("%s -> <@&%s>\n", rr.EmojiID, rr.RoleID))
	}
	return discord.Reply(s, inv.ChannelID, sb.String())
}

// grantRole gives the mapped role to a member who reacted on the menu.
// The binding is checked on every event so a deleted menu goes quiet
// instead of erroring.
func (e *Extension) grantRole(ctx context.Context, s discord.Session, guildID, userID, channelID, messageID, emoji string) {
	roleID, ok := e.matchMenuReaction(ctx, channelID, messageID, emoji)
	if !ok {
		return
	}

	if err := s.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		e.logger.WarnContext(ctx, "Failed to grant reaction role",
			"guild_id", guildID, "user_id", userID, "role_id", roleID, "error", err)
		return
	}
	e.logger.InfoContext(ctx, "Granted reaction role",
		"guild_id", guildID, "user_id", userID, "role_id", roleID, "emoji", emoji)
}

// revokeRole removes the mapped role when the member takes their reaction back.
func (e *Extension) revokeRole(ctx context.Context, s discord.Session, guildID, userID, channelID, messageID, emoji string) {
	roleID, ok := e.matchMenuReaction(ctx, channelID, messageID, emoji)
	if !ok {
		return
	}

	if err := s.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
		e.logger.WarnContext(ctx, "Failed to revoke reaction role",
			"guild_id", guildID, "user_id", userID, "role_id", roleID, "error", err)
		return
	}
	e.logger.InfoContext(ctx, "Revoked reaction role",
		"guild_id", guildID, "user_id", userID, "role_id", roleID, "emoji", emoji)
}

// matchMenuReaction reports whether a reaction event targets the bound menu
// with a registered emoji, returning the mapped role.
func (e *Extension) matchMenuReaction(ctx context.Context, channelID, messageID, emoji string) (string, bool) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	binding, err := e.store.MenuBinding(storeCtx)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to load menu binding", "error", err)
		return "", false
	}
	if binding == nil || binding.ChannelID != channelID || binding.MessageID != messageID {
		return "", false
	}

	roleID, err := e.store.RoleForEmoji(storeCtx, emoji)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to look up reaction role", "emoji", emoji, "error", err)
		return "", false
	}
	if roleID == "" {
		return "", false
	}
	return roleID, true
}

// normalizeEmoji strips the <:name:id> wrapper Discord clients send for
// custom emoji, leaving the name:id form the API expects.
func normalizeEmoji(emoji string) string {
	emoji = strings.TrimPrefix(emoji, "<")
	emoji = strings.TrimSuffix(emoji, ">")
	emoji = strings.TrimPrefix(emoji, "a:")
	emoji = strings.TrimPrefix(emoji, ":")
	return emoji
}
