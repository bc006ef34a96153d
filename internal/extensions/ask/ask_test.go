package ask

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/smc242/digtbot/internal/discord"
)

type fakeSession struct {
	sent []string
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
	return nil, errors.New("not implemented")
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	return nil
}

type fakeClient struct {
	answer    string
	err       error
	questions []string
}

func (c *fakeClient) Reply(ctx context.Context, question string) (string, error) {
	c.questions = append(c.questions, question)
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

func newTestExtension(client *fakeClient) *Extension {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, client)
}

func TestHandleAsk(t *testing.T) {
	client := &fakeClient{answer: "The Vanu are not a cult."}
	ext := newTestExtension(client)
	s := &fakeSession{}

	inv := &discord.Invocation{
		Command:   "ask",
		Args:      []string{"are", "the", "Vanu", "a", "cult?"},
		ChannelID: "chan-1",
	}
	if err := ext.handleAsk(context.Background(), s, inv); err != nil {
		t.Fatalf("handleAsk error = %v", err)
	}

	if len(client.questions) != 1 || client.questions[0] != "are the Vanu a cult?" {
		t.Errorf("questions asked = %v", client.questions)
	}
	if len(s.sent) != 1 || s.sent[0] != "The Vanu are not a cult." {
		t.Errorf("sent = %v", s.sent)
	}
}

func TestHandleAskWithoutQuestion(t *testing.T) {
	client := &fakeClient{}
	ext := newTestExtension(client)
	s := &fakeSession{}

	inv := &discord.Invocation{Command: "ask", ChannelID: "chan-1"}
	if err := ext.handleAsk(context.Background(), s, inv); err != nil {
		t.Fatalf("handleAsk error = %v", err)
	}

	if len(client.questions) != 0 {
		t.Errorf("questions asked = %v, want none", client.questions)
	}
	if len(s.sent) != 1 || !strings.Contains(s.sent[0], "provide a question") {
		t.Errorf("sent = %v", s.sent)
	}
}

func TestRespondReportsAIFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("model overloaded")}
	ext := newTestExtension(client)
	s := &fakeSession{}

	ext.respond(context.Background(), s, "chan-1", "anything")

	if len(s.sent) != 1 || !strings.Contains(s.sent[0], "Try again later") {
		t.Errorf("sent = %v", s.sent)
	}
}

func TestRespondTruncatesLongAnswers(t *testing.T) {
	client := &fakeClient{answer: strings.Repeat("a", 2500)}
	ext := newTestExtension(client)
	s := &fakeSession{}

	ext.respond(context.Background(), s, "chan-1", "essay please")

	if len(s.sent) != 1 {
		t.Fatalf("sent = %v, want one message", s.sent)
	}
	if len(s.sent[0]) != 2000 {
		t.Errorf("reply length = %d, want 2000", len(s.sent[0]))
	}
	if !strings.HasSuffix(s.sent[0], "...") {
		t.Error("truncated reply should end with ...")
	}
}

func TestMentionsUser(t *testing.T) {
	mentions := []*discordgo.User{{ID: "bot-1"}, nil, {ID: "user-2"}}

	if !mentionsUser(mentions, "bot-1") {
		t.Error("mentionsUser(bot-1) = false, want true")
	}
	if mentionsUser(mentions, "user-9") {
		t.Error("mentionsUser(user-9) = true, want false")
	}
}

func TestStripMentions(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<@12345> what is the meta?", "what is the meta?"},
		{"what about <@!678> this", "what about this"},
		{"no mentions here", "no mentions here"},
		{"<@12345>", ""},
	}
	for _, tt := range tests {
		if got := stripMentions(tt.in); got != tt.want {
			t.Errorf("stripMentions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
