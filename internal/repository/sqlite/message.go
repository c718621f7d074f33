package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *sql.DB
}

var _ domain.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db.SQL}
}

const insertOwnedMessage = `
	INSERT INTO chat_messages (id, session_id, role, content, created_at)
	SELECT ?, s.id, ?, ?, ?
	FROM chat_sessions s
	WHERE s.id = ? AND s.user_id = ?
`

type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMessage(ctx context.Context, db execContexter, userID uuid.UUID, m *domain.Message) error {
	res, err := db.ExecContext(ctx, insertOwnedMessage,
		m.ID,
		string(m.Role),
		m.Content,
		toNanos(m.CreatedAt),
		m.SessionID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return requireAffected(res)
}

// Append inserts a new message
func (r *MessageRepository) Append(ctx context.Context, userID uuid.UUID, message *domain.Message) error {
	return insertMessage(ctx, r.db, userID, message)
}

func (r *MessageRepository) AppendWithSummary(ctx context.Context, userID uuid.UUID, message *domain.Message, summary string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertMessage(ctx, tx, userID, message); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE chat_sessions SET summary = ? WHERE id = ?`,
			summary, message.SessionID,
		); err != nil {
			return fmt.Errorf("failed to update session summary: %w", err)
		}
		return nil
	})
}

// ListBySession retrieves messages for a specific session
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Message, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY created_at DESC, seq DESC
			LIMIT ?
		`, sessionID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY created_at ASC, seq ASC
		`, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			m       domain.Message
			role    string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.Role, err = domain.ParseRole(role); err != nil {
			return nil, err
		}
		m.CreatedAt = fromNanos(created)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if limit > 0 {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}
	return messages, nil
}
