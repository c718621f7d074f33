package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Rrens/estate-chat/internal/api/middleware"
	"github.com/Rrens/estate-chat/internal/api/response"
	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatHandler serves sessions and turns.
type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Overview returns recent sessions and the active one, creating a session
// for first-time users.
func (h *ChatHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	overview, err := h.chatService.Overview(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, overview)
}

// CreateSession starts a new session
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	created, err := h.chatService.CreateSession(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, created)
}

// ListSessions returns the caller's sessions, most recent first
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = v
	}

	sessions, err := h.chatService.ListSessions(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sessions)
}

// Summary returns the rolling summary of a session
func (h *ChatHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	summary, err := h.chatService.GetSummary(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"session_id": sessionID,
		"summary":    summary,
	})
}

// Messages returns the full ordered history of a session
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	messages, err := h.chatService.GetMessages(r.Context(), userID, sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, messages)
}

// DeleteSession deletes a session and its messages
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := sessionParams(w, r)
	if !ok {
		return
	}

	if err := h.chatService.DeleteSession(r.Context(), userID, sessionID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// SubmitTurn answers one user message
func (h *ChatHandler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.chatService.SubmitTurn(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, resp)
}

func sessionParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
