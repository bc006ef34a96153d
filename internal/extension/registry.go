package extension

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/smc242/digtbot/internal/discord"
)

// Gateway is the slice of *discordgo.Session the registry needs to attach
// extension listeners. AddHandler returns a function that removes the
// handler again, which the registry keeps for reloads.
type Gateway interface {
	AddHandler(handler interface{}) func()
}

// LoadError records a failed extension load, carrying the offending
// extension's name.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load extension %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Registrar accepts extension commands. Implemented by discord.Dispatcher.
type Registrar interface {
	RegisterExtension(cmd discord.Command) error
	ClearExtensions()
}

type namedFactory struct {
	name    string
	factory Factory
}

// Registry assembles extensions from registered factories. Loading policy is
// skip-and-log: one broken extension does not abort startup, and failures are
// recorded so the extensions admin command can report them.
type Registry struct {
	logger *slog.Logger

	mu        sync.Mutex
	factories []namedFactory
	loaded    []string
	failed    []LoadError
	// AddHandler remove functions, called on reload
	removeHandlers []func()
}

// NewRegistry creates an empty extension registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger.With("component", "extension_registry"),
	}
}

// Add registers an extension factory under a unique name. Factories run in
// registration order during Load.
func (r *Registry) Add(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = append(r.factories, namedFactory{name: name, factory: factory})
}

// Load builds every registered extension and wires its commands into the
// registrar and its listeners into the gateway. Failed extensions are logged
// and skipped.
func (r *Registry) Load(gw Gateway, reg Registrar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load(gw, reg)
}

// Reload detaches all extension listeners, clears extension commands, and
// loads every extension again. The caller must ensure reload does not run
// concurrently with event dispatch; the reload admin command is itself
// dispatched on the event loop, which serializes it.
func (r *Registry) Reload(gw Gateway, reg Registrar) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, remove := range r.removeHandlers {
		remove()
	}
	r.removeHandlers = nil
	reg.ClearExtensions()

	r.load(gw, reg)
}

func (r *Registry) load(gw Gateway, reg Registrar) {
	r.loaded = nil
	r.failed = nil

	for _, nf := range r.factories {
		ext, err := nf.factory()
		if err != nil {
			loadErr := LoadError{Name: nf.name, Err: err}
			r.failed = append(r.failed, loadErr)
			r.logger.Error("Extension failed to load, skipping", "extension", nf.name, "error", err)
			continue
		}

		for _, cmd := range ext.Commands() {
			if err := reg.RegisterExtension(cmd); err != nil {
				// first-registered wins; log the loser and keep going
				r.logger.Warn("Extension command rejected",
					"extension", nf.name, "command", cmd.Name, "error", err)
			}
		}
		for _, listener := range ext.Listeners() {
			r.removeHandlers = append(r.removeHandlers, gw.AddHandler(listener))
		}

		r.loaded = append(r.loaded, ext.Name())
		r.logger.Info("Extension loaded successfully", "extension", ext.Name())
	}
}

// Loaded returns the names of successfully loaded extensions, in load order.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.loaded))
	copy(out, r.loaded)
	return out
}

// Failed returns the load failures from the most recent Load or Reload.
func (r *Registry) Failed() []LoadError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LoadError, len(r.failed))
	copy(out, r.failed)
	return out
}
