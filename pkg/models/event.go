package models

import (
	"time"
)

// EventKind identifies the kind of agent event on a turn's stream.
type EventKind string

const (
	EventPhaseChange  EventKind = "phase_change"
	EventMessage      EventKind = "message"
	EventPlanCreated  EventKind = "plan_created"
	EventStepStart    EventKind = "step_start"
	EventStepComplete EventKind = "step_complete"
	EventStepFailed   EventKind = "step_failed"
	EventReport       EventKind = "report"
	EventComplete     EventKind = "complete"
	EventError        EventKind = "error"
)

// AgentEvent is one entry of a turn's event stream. Only the fields relevant
// to the kind are set.
type AgentEvent struct {
	Kind      EventKind        `json:"kind"`
	Phase     Phase            `json:"phase,omitempty"`
	Message   *AgentMessage    `json:"message,omitempty"`
	Plan      *ExecutionPlan   `json:"plan,omitempty"`
	Step      *PlannedStep     `json:"step,omitempty"`
	Report    *ExecutionReport `json:"report,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
