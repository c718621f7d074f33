package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newSession(t *testing.T, repo *SessionRepository, userID uuid.UUID) *domain.ChatSession {
	t.Helper()
	s := &domain.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		Summary:   "New conversation",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func msg(sessionID uuid.UUID, role domain.MessageRole, content string, at time.Time) *domain.Message {
	return &domain.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: at,
	}
}

func TestMessages_OrderedByTimestampThenInsertion(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	messages := NewMessageRepository(db)

	userID := uuid.New()
	s := newSession(t, sessions, userID)

	// Same timestamp for every row: insertion order must win.
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	contents := []string{"hi", "hello there", "price in Berlin?", "about 12 EUR/m2"}
	for i, c := range contents {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, messages.Append(ctx, userID, msg(s.ID, role, c, at)))
	}

	got, err := messages.ListBySession(ctx, s.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, m := range got {
		assert.Equal(t, contents[i], m.Content)
	}
	assert.Equal(t, domain.RoleAssistant, got[1].Role)

	recent, err := messages.ListBySession(ctx, s.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "price in Berlin?", recent[0].Content)
	assert.Equal(t, "about 12 EUR/m2", recent[1].Content)
}

func TestMessages_AppendRejectsForeignSession(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	messages := NewMessageRepository(db)

	owner := uuid.New()
	s := newSession(t, sessions, owner)

	err := messages.Append(ctx, uuid.New(), msg(s.ID, domain.RoleUser, "sneaky", time.Now()))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = messages.AppendWithSummary(ctx, uuid.New(), msg(s.ID, domain.RoleAssistant, "sneaky", time.Now()), "hijacked")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := sessions.GetForUser(ctx, s.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "New conversation", got.Summary)

	list, err := messages.ListBySession(ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessages_AppendWithSummary(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	messages := NewMessageRepository(db)

	userID := uuid.New()
	s := newSession(t, sessions, userID)

	require.NoError(t, messages.Append(ctx, userID, msg(s.ID, domain.RoleUser, "hi", time.Now())))
	require.NoError(t, messages.AppendWithSummary(ctx, userID, msg(s.ID, domain.RoleAssistant, "hello", time.Now()), "greeting exchanged"))

	got, err := sessions.GetForUser(ctx, s.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "greeting exchanged", got.Summary)

	list, err := messages.ListBySession(ctx, s.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoleAssistant, list[1].Role)
}

func TestSessions_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sessions := NewSessionRepository(db)
	messages := NewMessageRepository(db)

	userID := uuid.New()
	s := newSession(t, sessions, userID)
	require.NoError(t, messages.Append(ctx, userID, msg(s.ID, domain.RoleUser, "hi", time.Now())))

	// Foreign user cannot delete.
	assert.ErrorIs(t, sessions.DeleteForUser(ctx, s.ID, uuid.New()), domain.ErrNotFound)

	require.NoError(t, sessions.DeleteForUser(ctx, s.ID, userID))
	assert.ErrorIs(t, sessions.DeleteForUser(ctx, s.ID, userID), domain.ErrNotFound)

	_, err := sessions.GetForUser(ctx, s.ID, userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := messages.ListBySession(ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSessions_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sessions := NewSessionRepository(db)

	userID := uuid.New()
	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		s := &domain.ChatSession{ID: uuid.New(), UserID: userID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, sessions.Create(ctx, s))
		ids = append(ids, s.ID)
	}
	newSession(t, sessions, uuid.New())

	list, err := sessions.ListByUser(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Equal(t, "", list[0].Summary)

	require.NoError(t, sessions.UpdateSummary(ctx, ids[0], userID, "talked about rent"))
	assert.ErrorIs(t, sessions.UpdateSummary(ctx, ids[0], uuid.New(), "x"), domain.ErrNotFound)
}

func TestUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)

	u := &domain.User{
		ID:           uuid.New(),
		Email:        "agent@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, users.Create(ctx, u))

	exists, err := users.EmailExists(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := users.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
