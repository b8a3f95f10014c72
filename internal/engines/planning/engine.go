package planning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/openai"
	langChainPrompts "github.com/tmc/langchaingo/prompts"

	"go-skillagent/internal/orchestrator"
	"go-skillagent/pkg/data"
	"go-skillagent/pkg/models"
	"go-skillagent/pkg/prompts"
)

var (
	PlanPrompt = langChainPrompts.NewPromptTemplate(prompts.CreatePlan, []string{"Goal", "Context", "Skills"})
)

// Engine is the LLM-backed planning engine.
type Engine struct {
	chain chains.Chain
}

var _ orchestrator.PlanningEngine = (*Engine)(nil)

// New builds an engine on the default OpenAI chat model.
func New() (*Engine, error) {
	llm, err := openai.New()
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return NewWithChain(chains.NewLLMChain(llm, PlanPrompt)), nil
}

// NewWithChain wires an explicit chain; tests inject fakes here.
func NewWithChain(chain chains.Chain) *Engine {
	return &Engine{chain: chain}
}

type planAnswer struct {
	Steps []struct {
		SkillKey string         `json:"skillKey"`
		Purpose  string         `json:"purpose"`
		Input    map[string]any `json:"input"`
	} `json:"steps"`
	Gaps          []models.SkillGap `json:"gaps"`
	CanAccomplish string            `json:"canAccomplish"`
}

// CreatePlan asks the model for an ordered step list over the available
// skills. Steps naming a skill the catalog does not carry become gaps instead
// of steps; the plan never references something it cannot call.
func (e *Engine) CreatePlan(ctx context.Context, in orchestrator.PlanInput) (*models.ExecutionPlan, error) {
	skills := make([]models.SkillSummary, 0, len(in.AvailableSkills))
	byKey := make(map[string]models.Skill, len(in.AvailableSkills))
	for _, s := range in.AvailableSkills {
		skills = append(skills, s.Summary())
		byKey[s.Key] = s
	}

	completion, err := chains.Call(ctx, e.chain, map[string]any{
		"Goal":    in.Goal.Statement,
		"Context": marshalJSON(in.Context),
		"Skills":  marshalJSON(skills),
	})
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}

	text, _ := completion["text"].(string)
	return buildPlan(text, byKey)
}

// buildPlan parses the model's answer and resolves each step against the
// catalog. Unresolvable steps turn into gaps so plan order stays dense.
func buildPlan(text string, byKey map[string]models.Skill) (*models.ExecutionPlan, error) {
	match, err := data.SanitizeAnswer(text)
	if err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	parsed := planAnswer{}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	plan := &models.ExecutionPlan{
		Steps:         []*models.PlannedStep{},
		Gaps:          append([]models.SkillGap{}, parsed.Gaps...),
		CanAccomplish: parsed.CanAccomplish,
	}
	for _, step := range parsed.Steps {
		skill, ok := byKey[step.SkillKey]
		if !ok {
			plan.Gaps = append(plan.Gaps, models.SkillGap{
				Capability: step.SkillKey,
				Suggestion: fmt.Sprintf("Enable the %s skill", step.SkillKey),
			})
			continue
		}
		plan.Steps = append(plan.Steps, &models.PlannedStep{
			SkillKey:     step.SkillKey,
			Skill:        &skill,
			Purpose:      step.Purpose,
			InputContext: step.Input,
			Order:        len(plan.Steps),
			Status:       models.StepStatusPending,
		})
	}
	return plan, nil
}

// ValidatePlan checks plan structure. Issues are warnings for the caller to
// log; a plan with issues is still usable.
func (e *Engine) ValidatePlan(plan *models.ExecutionPlan) models.PlanValidation {
	if plan == nil {
		return models.PlanValidation{Issues: []string{"plan is nil"}}
	}
	var issues []string
	seen := map[string]bool{}
	for i, step := range plan.Steps {
		if step.Order != i {
			issues = append(issues, fmt.Sprintf("step %d has order %d", i, step.Order))
		}
		if step.SkillKey == "" {
			issues = append(issues, fmt.Sprintf("step %d has no skill key", i))
		}
		if step.Purpose == "" {
			issues = append(issues, fmt.Sprintf("step %d has no purpose", i))
		}
		if step.Status != models.StepStatusPending {
			issues = append(issues, fmt.Sprintf("step %d starts in status %s", i, step.Status))
		}
		if seen[step.SkillKey] {
			issues = append(issues, fmt.Sprintf("skill %s appears more than once", step.SkillKey))
		}
		seen[step.SkillKey] = true
	}
	return models.PlanValidation{Valid: len(issues) == 0, Issues: issues}
}

func marshalJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(out)
}
