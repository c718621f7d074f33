package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatSession is one persisted conversation thread owned by a user. Summary
// holds the rolling summary of everything older than the retained window.
type ChatSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionRepository defines the interface for session storage. Every lookup is
// scoped to the owning user; a session owned by someone else is ErrNotFound.
type SessionRepository interface {
	Create(ctx context.Context, session *ChatSession) error
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*ChatSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ChatSession, error)
	UpdateSummary(ctx context.Context, id, userID uuid.UUID, summary string) error
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
}
