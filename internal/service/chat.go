// Package service holds the application services behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Rrens/estate-chat/internal/agent"
	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultSessionLimit = 10
	maxSessionLimit     = 50
)

// Pipeline processes one turn over a reloaded conversation state.
type Pipeline interface {
	ProcessTurn(ctx context.Context, st agent.State, userText string) (*agent.Result, error)
}

// ChatConfig tunes ChatService.
type ChatConfig struct {
	DefaultSummary   string
	SessionListLimit int
	HistoryLimit     int
	TurnTimeout      time.Duration
}

// ChatService drives turns through the pipeline and manages sessions.
type ChatService struct {
	sessions domain.SessionRepository
	messages domain.MessageRepository
	history  *agent.History
	pipeline Pipeline
	locker   SessionLocker
	validate *validator.Validate
	cfg      ChatConfig
	now      func() time.Time
}

// NewChatService creates a chat service. A nil locker uses a LocalLocker.
func NewChatService(
	sessions domain.SessionRepository,
	messages domain.MessageRepository,
	pipeline Pipeline,
	locker SessionLocker,
	cfg ChatConfig,
) *ChatService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if cfg.SessionListLimit <= 0 {
		cfg.SessionListLimit = defaultSessionLimit
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &ChatService{
		sessions: sessions,
		messages: messages,
		history:  agent.NewHistory(sessions, messages, cfg.HistoryLimit, cfg.DefaultSummary),
		pipeline: pipeline,
		locker:   locker,
		validate: v,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SubmitTurn runs one user utterance through the pipeline. The user message
// is stored before generation; the reply and summary are stored together
// afterwards, or not at all.
func (s *ChatService) SubmitTurn(ctx context.Context, userID uuid.UUID, req domain.TurnRequest) (*domain.TurnResponse, error) {
	sessionID, text, err := s.checkTurn(req)
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("session_id", sessionID.String()).Logger()

	unlock, err := s.locker.Acquire(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer unlock()

	st, _, err := s.history.Load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.history.RecordUser(ctx, userID, sessionID, text); err != nil {
		return nil, err
	}

	turnCtx := ctx
	if s.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, s.cfg.TurnTimeout)
		defer cancel()
	}

	started := s.now()
	result, err := s.pipeline.ProcessTurn(turnCtx, st, text)
	if err != nil {
		logger.Warn().Err(err).Msg("turn aborted, user message kept")
		return nil, err
	}

	summary, err := s.history.Commit(ctx, userID, sessionID, result.State, result.Decision.Reply)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("capability", result.Decision.Capability).
		Bool("fell_back", result.Decision.FellBack).
		Dur("took", s.now().Sub(started)).
		Msg("turn completed")

	return &domain.TurnResponse{
		SessionID:  sessionID,
		Response:   result.Decision.Reply,
		Summary:    summary,
		Capability: result.Decision.Capability,
	}, nil
}

// checkTurn rejects incomplete requests before anything is written.
func (s *ChatService) checkTurn(req domain.TurnRequest) (uuid.UUID, string, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return uuid.Nil, "", malformedField(verrs[0])
		}
		return uuid.Nil, "", fmt.Errorf("%w: %v", domain.ErrMalformedRequest, err)
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: session_id is not a valid id", domain.ErrMalformedRequest)
	}
	return sessionID, req.Message, nil
}

func malformedField(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return domain.Malformed(fe.Field())
	case "max":
		return fmt.Errorf("%w: %s is longer than %s characters", domain.ErrMalformedRequest, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", domain.ErrMalformedRequest, fe.Field())
	}
}

// CreateSession starts an empty session with the placeholder summary.
func (s *ChatService) CreateSession(ctx context.Context, userID uuid.UUID) (*domain.SessionCreated, error) {
	session := &domain.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		Summary:   s.cfg.DefaultSummary,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().Str("session_id", session.ID.String()).Msg("session created")
	return &domain.SessionCreated{SessionID: session.ID, Summary: session.Summary}, nil
}

// ListSessions returns the user's sessions, most recent first.
func (s *ChatService) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatSession, error) {
	switch {
	case limit <= 0:
		limit = s.cfg.SessionListLimit
	case limit > maxSessionLimit:
		limit = maxSessionLimit
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []domain.ChatSession{}
	}
	return sessions, nil
}

// Overview returns the chatbot view. A user without sessions gets one.
func (s *ChatService) Overview(ctx context.Context, userID uuid.UUID) (*domain.ChatOverview, error) {
	sessions, err := s.ListSessions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		created, err := s.CreateSession(ctx, userID)
		if err != nil {
			return nil, err
		}
		sessions, err = s.ListSessions(ctx, userID, 0)
		if err != nil {
			return nil, err
		}
		return &domain.ChatOverview{Sessions: sessions, ActiveSessionID: created.SessionID}, nil
	}

	return &domain.ChatOverview{Sessions: sessions, ActiveSessionID: sessions[0].ID}, nil
}

// GetSummary returns the rolling summary of a session.
func (s *ChatService) GetSummary(ctx context.Context, userID, sessionID uuid.UUID) (string, error) {
	session, err := s.sessions.GetForUser(ctx, sessionID, userID)
	if err != nil {
		return "", err
	}
	return session.Summary, nil
}

// GetMessages returns every message of a session, oldest first.
func (s *ChatService) GetMessages(ctx context.Context, userID, sessionID uuid.UUID) ([]domain.Message, error) {
	if _, err := s.sessions.GetForUser(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// DeleteSession removes a session and its messages. Missing or foreign
// sessions report domain.ErrNotFound every time.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	unlock, err := s.locker.Acquire(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	defer unlock()

	if err := s.sessions.DeleteForUser(ctx, sessionID, userID); err != nil {
		return err
	}

	log.Info().Str("session_id", sessionID.String()).Msg("session deleted")
	return nil
}
