package messages

import (
	"github.com/google/uuid"

	"go-skillagent/pkg/models"
)

// StartTurn drives one run() turn from a fresh user message.
type StartTurn struct {
	SessionID uuid.UUID
	Message   string
}

// AnswerQuestion resumes a session suspended on a clarifying question.
type AnswerQuestion struct {
	SessionID uuid.UUID
	MessageID string
	Response  string
}

// ExecutePlan runs the already-derived plan without re-planning.
type ExecutePlan struct {
	SessionID uuid.UUID
}

// GetSnapshot asks for the session state and history.
type GetSnapshot struct{}

// ResetSession returns the agent to idle with a fresh session id.
type ResetSession struct{}

// TurnResult carries everything one turn emitted.
type TurnResult struct {
	SessionID uuid.UUID           `json:"sessionId"`
	Events    []models.AgentEvent `json:"events"`
	State     models.AgentState   `json:"state"`
}

// Snapshot answers GetSnapshot.
type Snapshot struct {
	State   models.AgentState      `json:"state"`
	History []*models.AgentMessage `json:"history"`
}
