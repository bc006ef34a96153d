package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrCommandExists is returned when registering a command whose name is
// already taken. Registration order is authoritative: the first registration
// wins and later ones are rejected.
var ErrCommandExists = errors.New("command already registered")

// Invocation carries the parsed details of a single command call. It is
// created per incoming message and discarded after handling.
type Invocation struct {
	Command   string
	Args      []string
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorTag string
}

// HandlerFunc handles a single command invocation. A returned error is logged
// and reported to the channel as an internal error; it never stops dispatch.
type HandlerFunc func(ctx context.Context, s Session, inv *Invocation) error

// Middleware wraps a HandlerFunc with cross-cutting behaviour such as
// invocation logging or owner checks.
type Middleware func(next HandlerFunc) HandlerFunc

// Command is a named command with its handler and optional middleware.
type Command struct {
	Name        string
	Description string
	Handler     HandlerFunc
	Middleware  []Middleware
}

// Dispatcher parses prefixed commands out of message events and routes them
// to registered handlers. Built-in commands take precedence over extension
// commands. The command table is mutated only at startup and on an
// administrative reload, which is serialized with dispatch via the mutex.
type Dispatcher struct {
	logger *slog.Logger
	prefix string

	mu         sync.RWMutex
	builtins   map[string]*Command
	extensions map[string]*Command
	// registration order, for help output and suggestions
	builtinOrder   []string
	extensionOrder []string

	middleware []Middleware
}

// NewDispatcher creates a dispatcher for the given command prefix. Command
// names are matched case-insensitively, as the original DIGT bot did.
func NewDispatcher(logger *slog.Logger, prefix string) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:     logger.With("component", "dispatcher"),
		prefix:     prefix,
		builtins:   make(map[string]*Command),
		extensions: make(map[string]*Command),
	}
}

// Use appends global middleware applied to every dispatched command,
// outermost first.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middleware = append(d.middleware, mw...)
}

// RegisterBuiltin registers an administrative command. Built-ins are looked
// up before extension commands and cannot be shadowed.
func (d *Dispatcher) RegisterBuiltin(cmd Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := strings.ToLower(cmd.Name)
	if _, ok := d.builtins[name]; ok {
		return fmt.Errorf("%w: %s", ErrCommandExists, name)
	}
	c := cmd
	c.Name = name
	d.builtins[name] = &c
	d.builtinOrder = append(d.builtinOrder, name)
	return nil
}

// RegisterExtension registers a command provided by an extension. The name
// must not collide with a built-in or a previously registered extension
// command; the first registration wins.
func (d *Dispatcher) RegisterExtension(cmd Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := strings.ToLower(cmd.Name)
	if _, ok := d.builtins[name]; ok {
		return fmt.Errorf("%w: %s shadows a built-in command", ErrCommandExists, name)
	}
	if _, ok := d.extensions[name]; ok {
		return fmt.Errorf("%w: %s", ErrCommandExists, name)
	}
	c := cmd
	c.Name = name
	d.extensions[name] = &c
	d.extensionOrder = append(d.extensionOrder, name)
	return nil
}

// ClearExtensions removes all extension commands, keeping built-ins. Used by
// the reload command before extensions re-register.
func (d *Dispatcher) ClearExtensions() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extensions = make(map[string]*Command)
	d.extensionOrder = nil
}

// Commands returns all registered commands, built-ins first, each group in
// registration order.
func (d *Dispatcher) Commands() []Command {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Command, 0, len(d.builtinOrder)+len(d.extensionOrder))
	for _, name := range d.builtinOrder {
		out = append(out, *d.builtins[name])
	}
	for _, name := range d.extensionOrder {
		out = append(out, *d.extensions[name])
	}
	return out
}

// Prefix returns the command prefix the dispatcher matches on.
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// HandleMessageCreate is the discordgo handler entry point. It filters out
// the bot's own messages and hands the rest to Dispatch.
func (d *Dispatcher) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	d.Dispatch(context.Background(), s, m.Message)
}

// Dispatch parses a message and invokes the matching handler. Messages
// without the command prefix are ignored. An unknown command gets a
// closest-match suggestion unless it looks like a mention.
func (d *Dispatcher) Dispatch(ctx context.Context, s Session, msg *discordgo.Message) {
	if msg == nil || len(msg.Content) < len(d.prefix) {
		return
	}
	if !strings.EqualFold(msg.Content[:len(d.prefix)], d.prefix) {
		return
	}

	fields := strings.Fields(msg.Content[len(d.prefix):])
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])

	d.mu.RLock()
	cmd, ok := d.builtins[name]
	if !ok {
		cmd, ok = d.extensions[name]
	}
	globalMW := d.middleware
	d.mu.RUnlock()

	if !ok {
		d.handleUnknown(s, msg.ChannelID, name)
		return
	}

	inv := &Invocation{
		Command:   cmd.Name,
		Args:      fields[1:],
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		AuthorID:  msg.Author.ID,
		AuthorTag: msg.Author.Username,
	}

	h := cmd.Handler
	for i := len(cmd.Middleware) - 1; i >= 0; i-- {
		h = cmd.Middleware[i](h)
	}
	for i := len(globalMW) - 1; i >= 0; i-- {
		h = globalMW[i](h)
	}

	d.invoke(ctx, s, h, inv)
}

// invoke runs a single handler, containing panics and errors so the event
// loop never dies on a misbehaving command.
func (d *Dispatcher) invoke(ctx context.Context, s Session, h HandlerFunc, inv *Invocation) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Handler panicked",
				"command", inv.Command,
				"panic", r,
				"stack", string(debug.Stack()))
			if err := Reply(s, inv.ChannelID, "Internal error."); err != nil {
				d.logger.Error("Failed to send panic notice", "error", err, "channel_id", inv.ChannelID)
			}
		}
	}()

	if err := h(ctx, s, inv); err != nil {
		d.logger.Error("Handler failed", "command", inv.Command, "error", err)
		if sendErr := Reply(s, inv.ChannelID, "Internal error."); sendErr != nil {
			d.logger.Error("Failed to send error notice", "error", sendErr, "channel_id", inv.ChannelID)
		}
	}
}

// handleUnknown replies with the closest registered command name. Invocations
// containing a mention get no suggestion; the original bot refused to be used
// to ping people.
func (d *Dispatcher) handleUnknown(s Session, channelID, name string) {
	if strings.Contains(name, "@") {
		return
	}

	d.mu.RLock()
	candidates := make([]string, 0, len(d.builtinOrder)+len(d.extensionOrder))
	candidates = append(candidates, d.builtinOrder...)
	candidates = append(candidates, d.extensionOrder...)
	d.mu.RUnlock()

	reply := fmt.Sprintf("Command not found: `%s`.", name)
	if suggestion := closestMatch(name, candidates); suggestion != "" {
		reply += fmt.Sprintf(" Did you mean `%s%s`?", d.prefix, suggestion)
	}
	if err := Reply(s, channelID, reply); err != nil {
		d.logger.Error("Failed to send unknown command reply", "error", err, "channel_id", channelID)
	}
}
