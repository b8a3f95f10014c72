package models

import (
	"time"
)

// MessageType identifies the kind of conversation message.
type MessageType string

const (
	MessageTypeUser     MessageType = "user"
	MessageTypeInfo     MessageType = "info"
	MessageTypeQuestion MessageType = "question"
	MessageTypePlan     MessageType = "plan"
	MessageTypeProgress MessageType = "progress"
	MessageTypeReport   MessageType = "report"
)

// MessagePayload is the tagged union of per-type message payloads. Exactly one
// variant exists per message type that carries structured data.
type MessagePayload interface {
	messagePayload()
}

// QuestionPayload accompanies a question message while understanding is
// suspended.
type QuestionPayload struct {
	Question    string   `json:"question"`
	MissingInfo []string `json:"missingInfo,omitempty"`
}

// PlanPayload accompanies a plan message.
type PlanPayload struct {
	Plan *ExecutionPlan `json:"plan"`
	Gaps []SkillGap     `json:"gaps,omitempty"`
}

// ProgressPayload accompanies a progress message emitted per executing step.
type ProgressPayload struct {
	SkillKey string `json:"skillKey"`
	Purpose  string `json:"purpose"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
}

// ReportPayload accompanies the terminal report message of a turn.
type ReportPayload struct {
	Report *ExecutionReport `json:"report"`
}

func (QuestionPayload) messagePayload() {}
func (PlanPayload) messagePayload()     {}
func (ProgressPayload) messagePayload() {}
func (ReportPayload) messagePayload()   {}

// AgentMessage is one entry of the conversation history. Append-only; never
// mutated after being pushed.
type AgentMessage struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   MessagePayload `json:"payload,omitempty"`
}
