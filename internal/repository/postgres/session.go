package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	pool *pgxpool.Pool
}

var _ domain.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, summary, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Summary,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, COALESCE(summary, ''), created_at
		FROM chat_sessions
		WHERE id = $1 AND user_id = $2
	`
	var s domain.ChatSession
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.Summary,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatSession, error) {
	query := `
		SELECT id, user_id, COALESCE(summary, ''), created_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.ChatSession{}
	for rows.Next() {
		var s domain.ChatSession
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Summary,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) UpdateSummary(ctx context.Context, id, userID uuid.UUID, summary string) error {
	query := `UPDATE chat_sessions SET summary = $1 WHERE id = $2 AND user_id = $3`
	tag, err := r.pool.Exec(ctx, query, summary, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteForUser removes the session; chat_messages rows go with it through
// ON DELETE CASCADE.
func (r *SessionRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
