package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrDuplicateMapping is returned when a reaction-role mapping would reuse an
// emoji or a role that is already registered.
var ErrDuplicateMapping = errors.New("emoji or role already registered")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// MenuBinding returns the current reaction-role menu binding,
	// or nil, nil when no message is bound.
	MenuBinding(ctx context.Context) (*MenuBinding, error)

	// SaveMenuBinding sets the menu binding, replacing any previous one.
	SaveMenuBinding(ctx context.Context, channelID, messageID string) error

	// ClearMenuBinding removes the menu binding. Removing a binding that
	// does not exist is not an error.
	ClearMenuBinding(ctx context.Context) error

	// ReactionRoles returns all emoji-to-role mappings in creation order.
	ReactionRoles(ctx context.Context) ([]ReactionRole, error)

	// RoleForEmoji returns the role mapped to an emoji, or "" when the
	// emoji is not registered.
	RoleForEmoji(ctx context.Context, emojiID string) (string, error)

	// AddReactionRole registers a new emoji-to-role mapping. Returns
	// ErrDuplicateMapping when the emoji or the role is already in use.
	AddReactionRole(ctx context.Context, emojiID, roleID string) error

	// RemoveReactionRole removes the mapping for an emoji and reports
	// whether one existed.
	RemoveReactionRole(ctx context.Context, emojiID string) (bool, error)

	// SaveCommandLog records a command invocation in the audit log.
	SaveCommandLog(ctx context.Context, entry *CommandLog) error

	// RecentCommandLogs returns the most recent audit log entries.
	RecentCommandLogs(ctx context.Context, limit int) ([]CommandLog, error)

	// RunMaintenance performs database maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) MenuBinding(ctx context.Context) (*MenuBinding, error) {
	var binding MenuBinding
	err := s.db.GetContext(ctx, &binding,
		`SELECT id, channel_id, message_id, created_at, updated_at FROM menu_bindings WHERE id = 1;`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting menu binding", "error", err)
		return nil, fmt.Errorf("failed to get menu binding: %w", err)
	}
	return &binding, nil
}

func (s *sqlxStore) SaveMenuBinding(ctx context.Context, channelID, messageID string) error {
	if channelID == "" || messageID == "" {
		return fmt.Errorf("menu binding requires a channel id and a message id")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO menu_bindings (id, channel_id, message_id, created_at, updated_at)
        VALUES (1, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            channel_id = excluded.channel_id,
            message_id = excluded.message_id,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, channelID, messageID, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error saving menu binding",
			"channel_id", channelID, "message_id", messageID, "error", err)
		return fmt.Errorf("failed to save menu binding: %w", err)
	}

	s.logger.DebugContext(ctx, "Menu binding saved", "channel_id", channelID, "message_id", messageID)
	return nil
}

func (s *sqlxStore) ClearMenuBinding(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM menu_bindings WHERE id = 1;`); err != nil {
		s.logger.ErrorContext(ctx, "Error clearing menu binding", "error", err)
		return fmt.Errorf("failed to clear menu binding: %w", err)
	}
	return nil
}

func (s *sqlxStore) ReactionRoles(ctx context.Context) ([]ReactionRole, error) {
	var roles []ReactionRole
	err := s.db.SelectContext(ctx, &roles,
		`SELECT id, emoji_id, role_id, created_at FROM reaction_roles ORDER BY id;`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing reaction roles", "error", err)
		return nil, fmt.Errorf("failed to list reaction roles: %w", err)
	}
	return roles, nil
}

func (s *sqlxStore) RoleForEmoji(ctx context.Context, emojiID string) (string, error) {
	var roleID string
	err := s.db.GetContext(ctx, &roleID,
		`SELECT role_id FROM reaction_roles WHERE emoji_id = ?;`, emojiID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error looking up reaction role", "emoji_id", emojiID, "error", err)
		return "", fmt.Errorf("failed to look up role for emoji %s: %w", emojiID, err)
	}
	return roleID, nil
}

func (s *sqlxStore) AddReactionRole(ctx context.Context, emojiID, roleID string) error {
	if emojiID == "" || roleID == "" {
		return fmt.Errorf("reaction role requires an emoji id and a role id")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM reaction_roles WHERE emoji_id = ? OR role_id = ?;`, emojiID, roleID)
	if err != nil {
		return fmt.Errorf("failed to check existing mappings: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: emoji %s / role %s", ErrDuplicateMapping, emojiID, roleID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reaction_roles (emoji_id, role_id, created_at) VALUES (?, ?, ?);`,
		emojiID, roleID, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error adding reaction role",
			"emoji_id", emojiID, "role_id", roleID, "error", err)
		return fmt.Errorf("failed to add reaction role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Reaction role added", "emoji_id", emojiID, "role_id", roleID)
	return nil
}

func (s *sqlxStore) RemoveReactionRole(ctx context.Context, emojiID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reaction_roles WHERE emoji_id = ?;`, emojiID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error removing reaction role", "emoji_id", emojiID, "error", err)
		return false, fmt.Errorf("failed to remove reaction role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not determine affected rows", "emoji_id", emojiID, "error", err)
		return false, nil
	}
	return affected > 0, nil
}

func (s *sqlxStore) SaveCommandLog(ctx context.Context, entry *CommandLog) error {
	if entry == nil {
		return fmt.Errorf("cannot save nil command log entry")
	}
	if entry.Command == "" {
		return fmt.Errorf("command log entry must have a command name")
	}
	if entry.InvokedAt.IsZero() {
		entry.InvokedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO command_log (command, args, guild_id, channel_id, user_id, invoked_at)
        VALUES (:command, :args, :guild_id, :channel_id, :user_id, :invoked_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving command log", "command", entry.Command, "error", err)
		return fmt.Errorf("failed to save command log: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = uint(id)
	}
	return nil
}

func (s *sqlxStore) RecentCommandLogs(ctx context.Context, limit int) ([]CommandLog, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	var entries []CommandLog
	query := `
        SELECT id, command, args, guild_id, channel_id, user_id, invoked_at
        FROM command_log
        ORDER BY invoked_at DESC, id DESC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &entries, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent command logs", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent command logs: %w", err)
	}
	return entries, nil
}

// RunMaintenance executes a VACUUM command on the SQLite database.
// VACUUM must run outside a transaction in SQLite.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "VACUUM failed", "error", err)
		return fmt.Errorf("vacuum failed: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed successfully.")
	return nil
}
