package database

import "time"

// MenuBinding records which message the reaction-role menu is bound to.
// There is at most one binding; the bot was designed for a single server.
type MenuBinding struct {
	ID        int       `db:"id"`
	ChannelID string    `db:"channel_id"`
	MessageID string    `db:"message_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ReactionRole maps a reaction emoji on the menu message to the role it
// grants. Both sides are unique: an emoji grants one role and a role is
// granted by one emoji.
type ReactionRole struct {
	ID        uint      `db:"id"`
	EmojiID   string    `db:"emoji_id"`
	RoleID    string    `db:"role_id"`
	CreatedAt time.Time `db:"created_at"`
}

// CommandLog is one recorded command invocation, written by the audit
// middleware for every dispatched command.
type CommandLog struct {
	ID        uint      `db:"id"`
	Command   string    `db:"command"`
	Args      string    `db:"args"`
	GuildID   string    `db:"guild_id"`
	ChannelID string    `db:"channel_id"`
	UserID    string    `db:"user_id"`
	InvokedAt time.Time `db:"invoked_at"`
}
