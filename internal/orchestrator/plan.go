package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go-skillagent/pkg/models"
	"go-skillagent/pkg/template"
)

// runPlan derives and adopts the execution plan for the current goal.
// Validation issues are logged and never block adoption.
func (a *Agent) runPlan(ctx context.Context, em *emitter) error {
	a.setPhase(em, models.PhasePlan)
	if a.state.Goal == nil {
		return errors.New("planning requires a goal")
	}

	plan, err := a.planning.CreatePlan(ctx, PlanInput{
		Goal:            a.state.Goal,
		AvailableSkills: a.listSkills(ctx),
		Context:         a.state.Context,
	})
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}

	if v := a.planning.ValidatePlan(plan); !v.Valid {
		a.l.Warn().Strs("issues", v.Issues).Msg("plan has validation issues, adopting anyway")
	}

	a.state.Plan = plan
	a.state.Gaps = append([]models.SkillGap{}, plan.Gaps...)

	text, err := renderPlan(plan)
	if err != nil {
		a.l.Warn().Err(err).Msg("plan message render failed")
		text = plan.CanAccomplish
	}
	msg := newMessage(models.MessageTypePlan, text, models.PlanPayload{Plan: plan, Gaps: plan.Gaps})
	a.pushHistory(em, msg, true)
	em.send(models.AgentEvent{Kind: models.EventPlanCreated, Phase: a.state.Phase, Plan: plan})
	return nil
}

const planMessageTemplate = `{{if .Steps}}Here's my plan:
{{range .Steps}}{{.Number}}. {{.Purpose}}
{{end}}{{else}}No actions planned.{{end}}{{if .Gaps}}
Missing capabilities:
{{range .Gaps}}- {{.Capability}}
{{end}}{{end}}{{if .CanAccomplish}}
{{.CanAccomplish}}{{end}}`

func renderPlan(plan *models.ExecutionPlan) (string, error) {
	type line struct {
		Number  int
		Purpose string
	}
	steps := make([]line, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		steps = append(steps, line{Number: i + 1, Purpose: step.Purpose})
	}
	return template.Parse(planMessageTemplate, map[string]any{
		"Steps":         steps,
		"Gaps":          plan.Gaps,
		"CanAccomplish": plan.CanAccomplish,
	})
}
