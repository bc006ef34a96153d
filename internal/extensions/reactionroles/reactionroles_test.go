package reactionroles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/smc242/digtbot/internal/database"
	"github.com/smc242/digtbot/internal/discord"
)

// fakeSession records Discord API calls instead of performing them.
type fakeSession struct {
	sent          []string
	reactions     []string
	rolesAdded    []string
	rolesRemoved  []string
	messageExists bool
	reactionErr   error
	roleErr       error
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data.Content)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if !f.messageExists {
		return nil, errors.New("unknown message")
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	if f.reactionErr != nil {
		return f.reactionErr
	}
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.roleErr != nil {
		return f.roleErr
	}
	f.rolesAdded = append(f.rolesAdded, userID+":"+roleID)
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.roleErr != nil {
		return f.roleErr
	}
	f.rolesRemoved = append(f.rolesRemoved, userID+":"+roleID)
	return nil
}

func newTestExtension(t *testing.T) (*Extension, database.Store) {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store), store
}

func invocation(args ...string) *discord.Invocation {
	return &discord.Invocation{
		Command:   "test",
		Args:      args,
		GuildID:   "guild-1",
		ChannelID: "cmd-chan",
		AuthorID:  "owner-1",
	}
}

func lastSent(t *testing.T, s *fakeSession) string {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("no message was sent")
	}
	return s.sent[len(s.sent)-1]
}

func TestBindAndAddReactionRole(t *testing.T) {
	ext, store := newTestExtension(t)
	ctx := context.Background()
	s := &fakeSession{messageExists: true}

	if err := ext.handleBindMessage(ctx, s, invocation("menu-chan", "menu-msg")); err != nil {
		t.Fatalf("bind_message error = %v", err)
	}
	if !strings.Contains(lastSent(t, s), "Successfully bound") {
		t.Errorf("bind reply = %q", lastSent(t, s))
	}

	binding, err := store.MenuBinding(ctx)
	if err != nil || binding == nil {
		t.Fatalf("MenuBinding() = %+v, %v", binding, err)
	}
	if binding.ChannelID != "menu-chan" || binding.MessageID != "menu-msg" {
		t.Errorf("binding = %+v", binding)
	}

	if err := ext.handleAddReactionRole(ctx, s, invocation("role-1", "salute:123")); err != nil {
		t.Fatalf("add_reaction_role error = %v", err)
	}
	if len(s.reactions) != 1 || s.reactions[0] != "salute:123" {
		t.Errorf("menu reactions = %v", s.reactions)
	}

	roleID, err := store.RoleForEmoji(ctx, "salute:123")
	if err != nil || roleID != "role-1" {
		t.Errorf("RoleForEmoji() = %q, %v", roleID, err)
	}
}

func TestBindRequiresUnbindFirst(t *testing.T) {
	ext, _ := newTestExtension(t)
	ctx := context.Background()
	s := &fakeSession{messageExists: true}

	if err := ext.handleBindMessage(ctx, s, invocation("chan-a", "msg-a")); err != nil {
		t.Fatalf("first bind error = %v", err)
	}
	if err := ext.handleBindMessage(ctx, s, invocation("chan-b", "msg-b")); err != nil {
		t.Fatalf("second bind error = %v", err)
	}
	if !strings.Contains(lastSent(t, s), "unbind") {
		t.Errorf("second bind reply = %q, want unbind hint", lastSent(t, s))
	}
}

func TestBindRejectsMissingMessage(t *testing.T) {
	ext, store := newTestExtension(t)
	ctx := context.Background()
	s := &fakeSession{messageExists: false}

	if err := ext.handleBindMessage(ctx, s, invocation("chan-a", "msg-a")); err != nil {
		t.Fatalf("bind error = %v", err)
	}
	if !strings.Contains(lastSent(t, s), "Failed to bind") {
		t.Errorf("reply = %q", lastSent(t, s))
	}

	binding, err := store.MenuBinding(ctx)
	if err != nil {
		t.Fatalf("MenuBinding() error = %v", err)
	}
	if binding != nil {
		t.Errorf("binding = %+v, want nil after failed bind", binding)
	}
}

func TestAddReactionRoleRequiresBinding(t *testing.T) {
	ext, _ := newTestExtension(t)
	s := &fakeSession{}

	if err := ext.handleAddReactionRole(context.Background(), s, invocation("role-1", "emoji-1")); err != nil {
		t.Fatalf("add_reaction_role error = %v", err)
	}
	if !strings.Contains(lastSent(t, s), "bind_message") {
		t.Errorf("reply = %q, want bind_message hint", lastSent(t, s))
	}
}

func TestAddReactionRoleRejectsDuplicates(t *testing.T) {
	ext, _ := newTestExtension(t)
	ctx := context.Background()
	s := &fakeSession{messageExists: true}

	if err := ext.handleBindMessage(ctx, s, invocation("chan", "msg")); err != nil {
		t.Fatalf("bind error = %v", err)
	}
	if err := ext.handleAddReactionRole(ctx, s, invocation("role-1", "emoji-1")); err != nil {
		t.Fatalf("first add error = %v", err)
	}
	if err := ext.handleAddReactionRole(ctx, s, invocation("role-2", "emoji-1")); err != nil {
		t.Fatalf("duplicate add error = %v", err)
	}
	if !strings.Contains(lastSent(t, s), "already registered") {
		t.Errorf("reply = %q", lastSent(t, s))
	}
}

func TestGrantAndRevokeRole(t *testing.T) {
	ext, store := newTestExtension(t)
	ctx := context.Background()

	if err := store.SaveMenuBinding(ctx, "menu-chan", "menu-msg"); err != nil {
		t.Fatalf("SaveMenuBinding() error = %v", err)
	}
	if err := store.AddReactionRole(ctx, "emoji-1", "role-1"); err != nil {
		t.Fatalf("AddReactionRole() error = %v", err)
	}

	s := &fakeSession{}
	ext.grantRole(ctx, s, "guild-1", "member-1", "menu-chan", "menu-msg", "emoji-1")
	if len(s.rolesAdded) != 1 || s.rolesAdded[0] != "member-1:role-1" {
		t.Errorf("rolesAdded = %v", s.rolesAdded)
	}

	ext.revokeRole(ctx, s, "guild-1", "member-1", "menu-chan", "menu-msg", "emoji-1")
	if len(s.rolesRemoved) != 1 || s.rolesRemoved[0] != "member-1:role-1" {
		t.Errorf("rolesRemoved = %v", s.rolesRemoved)
	}
}

func TestGrantIgnoresUnrelatedReactions(t *testing.T) {
	ext, store := newTestExtension(t)
	ctx := context.Background()

	if err := store.SaveMenuBinding(ctx, "menu-chan", "menu-msg"); err != nil {
		t.Fatalf("SaveMenuBinding() error = %v", err)
	}
	if err := store.AddReactionRole(ctx, "emoji-1", "role-1"); err != nil {
		t.Fatalf("AddReactionRole() error = %v", err)
	}

	s := &fakeSession{}
	// wrong message
	ext.grantRole(ctx, s, "guild-1", "member-1", "menu-chan", "other-msg", "emoji-1")
	// unregistered emoji
	ext.grantRole(ctx, s, "guild-1", "member-1", "menu-chan", "menu-msg", "emoji-9")

	if len(s.rolesAdded) != 0 {
		t.Errorf("rolesAdded = %v, want none", s.rolesAdded)
	}
}

func TestNormalizeEmoji(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<:salute:123>", "salute:123"},
		{"<a:wave:456>", "wave:456"},
		{"salute:123", "salute:123"},
		{"👍", "👍"},
	}
	for _, tt := range tests {
		if got := normalizeEmoji(tt.in); got != tt.want {
			t.Errorf("normalizeEmoji(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
