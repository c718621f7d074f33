package service

import (
	"context"

	"github.com/Rrens/estate-chat/internal/agent"
	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.ChatSession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatSession), args.Error(1)
}

func (m *MockSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateSummary(ctx context.Context, id, userID uuid.UUID, summary string) error {
	args := m.Called(ctx, id, userID, summary)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Append(ctx context.Context, userID uuid.UUID, message *domain.Message) error {
	args := m.Called(ctx, userID, message)
	return args.Error(0)
}

func (m *MockMessageRepository) AppendWithSummary(ctx context.Context, userID uuid.UUID, message *domain.Message, summary string) error {
	args := m.Called(ctx, userID, message, summary)
	return args.Error(0)
}

func (m *MockMessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockPipeline mocks the turn pipeline
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) ProcessTurn(ctx context.Context, st agent.State, userText string) (*agent.Result, error) {
	args := m.Called(ctx, st, userText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Result), args.Error(1)
}
