package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	db *sql.DB
}

var _ domain.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.SQL}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, summary, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.UserID, session.Summary, toNanos(session.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.ChatSession, error) {
	var (
		s       domain.ChatSession
		created int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, COALESCE(summary, ''), created_at
		FROM chat_sessions
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&s.ID, &s.UserID, &s.Summary, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.CreatedAt = fromNanos(created)
	return &s, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(summary, ''), created_at
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.ChatSession{}
	for rows.Next() {
		var (
			s       domain.ChatSession
			created int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Summary, &created); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.CreatedAt = fromNanos(created)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) UpdateSummary(ctx context.Context, id, userID uuid.UUID, summary string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET summary = ? WHERE id = ? AND user_id = ?`,
		summary, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}
	return requireAffected(res)
}

// DeleteForUser removes the session and its messages in one transaction.
func (r *SessionRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`, id, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chat_messages WHERE session_id = ?`, id,
		); err != nil {
			return fmt.Errorf("failed to delete session messages: %w", err)
		}
		return nil
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
