package domain

import "github.com/google/uuid"

// TurnRequest is one user utterance submitted to a session.
type TurnRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"required,max=4000"`
}

// TurnResponse carries the assistant reply and the session summary after the turn.
type TurnResponse struct {
	SessionID  uuid.UUID `json:"session_id"`
	Response   string    `json:"response"`
	Summary    string    `json:"summary"`
	Capability string    `json:"capability"`
}

// SessionCreated is returned when a session is started.
type SessionCreated struct {
	SessionID uuid.UUID `json:"session_id"`
	Summary   string    `json:"summary"`
}

// ChatOverview backs the chatbot view: recent sessions plus the active one.
type ChatOverview struct {
	Sessions        []ChatSession `json:"sessions"`
	ActiveSessionID uuid.UUID     `json:"active_session_id"`
}
