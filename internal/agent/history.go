package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
)

const headlineRunes = 50

// History converts between stored rows and State.
type History struct {
	sessions    domain.SessionRepository
	messages    domain.MessageRepository
	limit       int
	placeholder string
	now         func() time.Time
}

// NewHistory reads at most limit messages per load (0 means all). placeholder
// is the summary new sessions start with; it is never fed back as context.
func NewHistory(sessions domain.SessionRepository, messages domain.MessageRepository, limit int, placeholder string) *History {
	return &History{
		sessions:    sessions,
		messages:    messages,
		limit:       limit,
		placeholder: placeholder,
		now:         time.Now,
	}
}

// Load rebuilds the state of a session owned by userID.
func (h *History) Load(ctx context.Context, userID, sessionID uuid.UUID) (State, *domain.ChatSession, error) {
	session, err := h.sessions.GetForUser(ctx, sessionID, userID)
	if err != nil {
		return State{}, nil, err
	}

	rows, err := h.messages.ListBySession(ctx, sessionID, h.limit)
	if err != nil {
		return State{}, nil, fmt.Errorf("failed to load history: %w", err)
	}

	st := State{Messages: make([]Turn, 0, len(rows))}
	for _, m := range rows {
		st.Messages = append(st.Messages, Turn{Role: m.Role, Content: m.Content})
	}
	// The placeholder and the first-turn headline are titles, not context:
	// the headline only repeats a message that is still in the window.
	if session.Summary != h.placeholder && session.Summary != Headline(firstUser(st)) {
		st.Summary = session.Summary
	}
	return st, session, nil
}

// RecordUser durably stores the user utterance before any generation starts.
func (h *History) RecordUser(ctx context.Context, userID, sessionID uuid.UUID, text string) error {
	if err := h.messages.Append(ctx, userID, h.newMessage(sessionID, domain.RoleUser, text)); err != nil {
		return fmt.Errorf("failed to record user message: %w", err)
	}
	return nil
}

// Commit stores the assistant reply and the summary together. It returns the
// summary written.
func (h *History) Commit(ctx context.Context, userID, sessionID uuid.UUID, st State, assistantText string) (string, error) {
	summary := st.Summary
	if summary == "" || summary == h.placeholder {
		if headline := Headline(firstUser(st)); headline != "" {
			summary = headline
		} else {
			summary = h.placeholder
		}
	}

	msg := h.newMessage(sessionID, domain.RoleAssistant, assistantText)
	if err := h.messages.AppendWithSummary(ctx, userID, msg, summary); err != nil {
		return "", fmt.Errorf("failed to record assistant message: %w", err)
	}
	return summary, nil
}

// Save records both halves of a turn.
func (h *History) Save(ctx context.Context, userID, sessionID uuid.UUID, st State, userText, assistantText string) (string, error) {
	if err := h.RecordUser(ctx, userID, sessionID, userText); err != nil {
		return "", err
	}
	return h.Commit(ctx, userID, sessionID, st, assistantText)
}

func (h *History) newMessage(sessionID uuid.UUID, role domain.MessageRole, content string) *domain.Message {
	return &domain.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: h.now(),
	}
}

func firstUser(st State) string {
	for _, t := range st.Messages {
		if t.Role == domain.RoleUser {
			return t.Content
		}
	}
	return ""
}

// Headline shortens text to a session title of at most 50 runes plus "...".
func Headline(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= headlineRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:headlineRunes]) + "..."
}
