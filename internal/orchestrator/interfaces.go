package orchestrator

import (
	"context"

	"go-skillagent/pkg/models"
)

// Assessment is the understanding engine's judgement of one user message.
type Assessment struct {
	Understood       bool           `json:"understood"`
	Confidence       float64        `json:"confidence"`
	ExtractedContext map[string]any `json:"extractedContext,omitempty"`
	MissingInfo      []string       `json:"missingInfo,omitempty"`
	Question         string         `json:"question,omitempty"`
}

// AssessInput carries everything the understanding engine sees per turn.
type AssessInput struct {
	Message         string
	Context         map[string]any
	History         []*models.AgentMessage
	AvailableSkills []models.SkillSummary
}

// UnderstandingEngine decides whether a goal is understood, pulls structured
// context out of free-text answers and builds the goal statement. The question
// budget lives here, not in the agent: the engine must eventually report
// understood.
type UnderstandingEngine interface {
	Assess(ctx context.Context, in AssessInput) (*Assessment, error)
	ExtractFromResponse(ctx context.Context, question *models.AgentMessage, answer string, context map[string]any) (map[string]any, error)
	BuildGoal(firstMessage string, assessments []*Assessment, context map[string]any) *models.AgentGoal
	CreateQuestionMessage(a *Assessment) *models.AgentMessage
	Reset()
}

// PlanInput carries the planning request.
type PlanInput struct {
	Goal            *models.AgentGoal
	AvailableSkills []models.Skill
	Context         map[string]any
}

// PlanningEngine turns a goal plus the available skills into an ordered plan
// with identified capability gaps.
type PlanningEngine interface {
	CreatePlan(ctx context.Context, in PlanInput) (*models.ExecutionPlan, error)
	ValidatePlan(plan *models.ExecutionPlan) models.PlanValidation
}

// SkillCatalog lists the callable skills of an organization.
type SkillCatalog interface {
	ListSkills(ctx context.Context, organizationID string, includeInactive bool) ([]models.Skill, error)
}

// SkillExecutor runs one skill against a context. A failed execution may come
// back as an error or as a result with Success false; the agent treats both
// the same way.
type SkillExecutor interface {
	ExecuteSkill(ctx context.Context, skillKey string, stepContext map[string]any) (*models.SkillResult, error)
}
