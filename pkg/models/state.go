package models

import (
	"time"
)

// Phase is the single source of truth for what the agent may do next.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUnderstand Phase = "understand"
	PhasePlan       Phase = "plan"
	PhaseExecute    Phase = "execute"
	PhaseReport     Phase = "report"
)

// AgentGoal is the goal statement built once understanding converges, with the
// context snapshot used to produce it. Immutable until reset.
type AgentGoal struct {
	Statement string         `json:"statement"`
	Context   map[string]any `json:"context,omitempty"`
}

// AgentState is owned by exactly one agent instance and never shared.
type AgentState struct {
	Phase               Phase           `json:"phase"`
	Goal                *AgentGoal      `json:"goal,omitempty"`
	Context             map[string]any  `json:"context"`
	Plan                *ExecutionPlan  `json:"plan,omitempty"`
	ExecutedSteps       []*PlannedStep  `json:"executedSteps"`
	Gaps                []SkillGap      `json:"gaps"`
	ConversationHistory []*AgentMessage `json:"conversationHistory"`
	SessionID           string          `json:"sessionId"`
	StartedAt           time.Time       `json:"startedAt"`
	Error               string          `json:"error,omitempty"`
}
