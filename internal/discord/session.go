// Package discord owns the connection to Discord and the command dispatch
// layer on top of it. All wire-level communication is delegated to discordgo;
// this package's responsibility starts at the event callback boundary.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Session is the slice of *discordgo.Session behaviour that command handlers
// and extensions use. Keeping it narrow allows mocking the session in tests.
// *discordgo.Session satisfies this interface.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// NewSession creates a discordgo session authenticated with the given bot
// token. The session is configured with the intents the bot needs (guild
// messages with content, and reactions for the role menu) but is not opened;
// the orchestrator opens the gateway connection.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	return s, nil
}

// Reply sends a plain text message to a channel. Mentions other than direct
// user mentions are suppressed so the bot cannot be used for mass pings.
func Reply(s Session, channelID, content string) error {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	})
	return err
}
