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

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertMessages inserts or replaces messages by message id in a single
	// transaction. An empty slice is a no-op.
	UpsertMessages(ctx context.Context, messages []Message) error

	// GetMessage retrieves a message by id. Returns nil, nil if not found.
	GetMessage(ctx context.Context, messageID string) (*Message, error)

	// GetMessageContents returns the content of every stored message, oldest first.
	GetMessageContents(ctx context.Context) ([]string, error)

	// GetGroupIDs returns the ids of every stored group.
	GetGroupIDs(ctx context.Context) ([]string, error)

	// GetGroups returns every stored group ordered by id.
	GetGroups(ctx context.Context) ([]Group, error)

	// UpsertGroups inserts or replaces groups by group id in a single
	// transaction. An empty slice is a no-op.
	UpsertGroups(ctx context.Context, groups []Group) error

	// DeleteGroups removes the given group ids in one statement.
	DeleteGroups(ctx context.Context, groupIDs []string) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
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
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const upsertMessageQuery = `
    INSERT INTO whatsapp_messages
        (message_id, chat_id, sender, message_type, message_content, caption, "timestamp", created_at, updated_at)
    VALUES
        (:message_id, :chat_id, :sender, :message_type, :message_content, :caption, :timestamp, :created_at, :updated_at)
    ON CONFLICT (message_id) DO UPDATE SET
        chat_id = excluded.chat_id,
        sender = excluded.sender,
        message_type = excluded.message_type,
        message_content = excluded.message_content,
        caption = excluded.caption,
        "timestamp" = excluded."timestamp",
        updated_at = excluded.updated_at;
`

// UpsertMessages writes all messages in one transaction. Either every row is
// written or none is.
func (s *sqlxStore) UpsertMessages(ctx context.Context, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	for i := range messages {
		if messages[i].MessageID == "" {
			return fmt.Errorf("message at index %d has no message_id", i)
		}
		if messages[i].Content == "" {
			return fmt.Errorf("message %s has empty content", messages[i].MessageID)
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	now := s.now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for upserting messages", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	for i := range messages {
		msg := messages[i]
		msg.CreatedAt = now
		msg.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, upsertMessageQuery, &msg); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "Context timeout or cancellation while upserting messages", "error", err)
				return err
			}
			s.logger.ErrorContext(ctx, "Error upserting message", "message_id", msg.MessageID, "error", err)
			return fmt.Errorf("failed to upsert message %s: %w", msg.MessageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Messages upserted successfully", "count", len(messages))
	return nil
}

// GetMessage retrieves a single message by id.
func (s *sqlxStore) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var msg Message
	query := s.db.Rebind(`
        SELECT message_id, chat_id, sender, message_type, message_content, caption, "timestamp", created_at, updated_at
        FROM whatsapp_messages
        WHERE message_id = ?;
    `)

	err := s.db.GetContext(ctx, &msg, query, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return &msg, nil
}

// GetMessageContents reads the content column of every stored message.
func (s *sqlxStore) GetMessageContents(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var contents []string
	query := `SELECT message_content FROM whatsapp_messages ORDER BY "timestamp", message_id;`

	err := s.db.SelectContext(ctx, &contents, query)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while reading message contents", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading message contents", "error", err)
		return nil, fmt.Errorf("failed to read message contents: %w", err)
	}

	s.logger.DebugContext(ctx, "Read message contents", "count", len(contents))
	return contents, nil
}

// GetGroupIDs returns the ids of all stored groups.
func (s *sqlxStore) GetGroupIDs(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var ids []string
	err := s.db.SelectContext(ctx, &ids, `SELECT group_id FROM whatsapp_groups ORDER BY group_id;`)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while reading group ids", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading group ids", "error", err)
		return nil, fmt.Errorf("failed to read group ids: %w", err)
	}
	return ids, nil
}

// GetGroups returns all stored groups.
func (s *sqlxStore) GetGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	query := `
        SELECT group_id, group_name, owner, participant_count, updated_at
        FROM whatsapp_groups
        ORDER BY group_id;
    `
	if err := s.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}
	return groups, nil
}

const upsertGroupQuery = `
    INSERT INTO whatsapp_groups (group_id, group_name, owner, participant_count, updated_at)
    VALUES (:group_id, :group_name, :owner, :participant_count, :updated_at)
    ON CONFLICT (group_id) DO UPDATE SET
        group_name = excluded.group_name,
        owner = excluded.owner,
        participant_count = excluded.participant_count,
        updated_at = excluded.updated_at;
`

// UpsertGroups writes all groups in one transaction.
func (s *sqlxStore) UpsertGroups(ctx context.Context, groups []Group) error {
	if len(groups) == 0 {
		return nil
	}
	for i := range groups {
		if groups[i].GroupID == "" {
			return fmt.Errorf("group at index %d has no group_id", i)
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	now := s.now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for upserting groups", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	for i := range groups {
		g := groups[i]
		g.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, upsertGroupQuery, &g); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "Context timeout or cancellation while upserting groups", "error", err)
				return err
			}
			s.logger.ErrorContext(ctx, "Error upserting group", "group_id", g.GroupID, "error", err)
			return fmt.Errorf("failed to upsert group %s: %w", g.GroupID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Groups upserted successfully", "count", len(groups))
	return nil
}

// DeleteGroups removes the given groups with a single IN statement.
func (s *sqlxStore) DeleteGroups(ctx context.Context, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM whatsapp_groups WHERE group_id IN (?)`, groupIDs)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error building query for deleting groups", "error", err)
		return fmt.Errorf("failed to build query for deleting groups: %w", err)
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting groups", "count", len(groupIDs), "error", err)
		return fmt.Errorf("failed to delete groups: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "error", err)
	} else if int(affected) != len(groupIDs) {
		s.logger.WarnContext(ctx, "Not all groups were deleted",
			"requested", len(groupIDs),
			"affected", affected)
	}

	s.logger.DebugContext(ctx, "Deleted groups", "count", len(groupIDs))
	return nil
}

// RunSQLMaintenance vacuums the store. VACUUM must run outside a transaction
// on both drivers.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	stmt := "VACUUM;"
	if s.db.DriverName() == DriverPostgres {
		stmt = "VACUUM ANALYZE;"
	}

	s.logger.InfoContext(ctx, "Starting database maintenance", "statement", stmt)

	_, err := s.db.ExecContext(ctx, stmt)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
