package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ParseRole converts a stored role string. Legacy rows written as "ai" map to
// the assistant.
func ParseRole(s string) (MessageRole, error) {
	switch s {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAssistant), "ai":
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown message role %q", s)
	}
}

// Message represents one turn half in a session. Messages are immutable and
// ordered by CreatedAt, ties broken by insertion order.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	// Append stores message if its session belongs to userID, otherwise ErrNotFound.
	Append(ctx context.Context, userID uuid.UUID, message *Message) error

	// AppendWithSummary stores message and replaces the session summary atomically.
	AppendWithSummary(ctx context.Context, userID uuid.UUID, message *Message, summary string) error

	// ListBySession returns messages oldest first. A positive limit keeps only
	// the most recent limit messages.
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]Message, error)
}
