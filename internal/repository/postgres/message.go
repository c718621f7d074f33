package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	pool *pgxpool.Pool
}

var _ domain.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new message repository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Ownership is checked inside the INSERT so a foreign or deleted session
// never receives a row.
const insertOwnedMessage = `
	INSERT INTO chat_messages (id, session_id, role, content, created_at)
	SELECT $1, s.id, $3, $4, $5
	FROM chat_sessions s
	WHERE s.id = $2 AND s.user_id = $6
`

// Append inserts a new message
func (r *MessageRepository) Append(ctx context.Context, userID uuid.UUID, message *domain.Message) error {
	tag, err := r.pool.Exec(ctx, insertOwnedMessage,
		message.ID,
		message.SessionID,
		string(message.Role),
		message.Content,
		message.CreatedAt,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendWithSummary inserts message and rewrites the session summary in one
// transaction.
func (r *MessageRepository) AppendWithSummary(ctx context.Context, userID uuid.UUID, message *domain.Message, summary string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insertOwnedMessage,
			message.ID,
			message.SessionID,
			string(message.Role),
			message.Content,
			message.CreatedAt,
			userID,
		)
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		if _, err := tx.Exec(ctx,
			`UPDATE chat_sessions SET summary = $1 WHERE id = $2`,
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
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		// Newest first to apply the limit, reversed below.
		rows, err = r.pool.Query(ctx, `
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		`, sessionID, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at ASC, seq ASC
		`, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var roleStr string

		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&roleStr,
			&m.Content,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.Role, err = domain.ParseRole(roleStr); err != nil {
			return nil, err
		}
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
