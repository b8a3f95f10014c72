package orchestrator

import (
	"context"
	"fmt"

	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/models"
)

// executePlan walks the plan strictly in order, touching only pending steps so
// a re-invocation after a partial run resumes deterministically. A failing
// step is recorded and the loop continues; nothing a skill does can abort the
// plan.
func (a *Agent) executePlan(ctx context.Context, em *emitter) {
	steps := a.state.Plan.Steps
	total := len(steps)
	for i, step := range steps {
		if step.Status != models.StepStatusPending {
			continue
		}
		step.Status = models.StepStatusRunning
		em.send(models.AgentEvent{Kind: models.EventStepStart, Phase: a.state.Phase, Step: step})
		if a.showProgress {
			msg := newMessage(models.MessageTypeProgress,
				fmt.Sprintf("Step %d of %d: %s", i+1, total, step.Purpose),
				models.ProgressPayload{SkillKey: step.SkillKey, Purpose: step.Purpose, Index: i, Total: total})
			a.pushHistory(em, msg, true)
		}

		result, err := a.invokeSkill(ctx, step)
		if err != nil || !result.Success {
			step.Status = models.StepStatusFailed
			if err != nil {
				step.Error = err.Error()
			} else if result.Error != "" {
				step.Error = result.Error
			} else {
				step.Error = "skill execution failed"
			}
			a.l.Warn().Str(logger.SkillField, step.SkillKey).Str("error", step.Error).Msg("step failed, continuing")
			em.send(models.AgentEvent{Kind: models.EventStepFailed, Phase: a.state.Phase, Step: step, Error: step.Error})
			continue
		}

		step.Status = models.StepStatusCompleted
		step.Result = result
		if out, ok := result.Output.(map[string]any); ok {
			a.mergeContext(out)
		}
		a.state.ExecutedSteps = append(a.state.ExecutedSteps, step)
		em.send(models.AgentEvent{Kind: models.EventStepComplete, Phase: a.state.Phase, Step: step})
	}
}

// invokeSkill builds the step's execution context from the session context
// with step-local overrides winning, and normalizes a nil result.
func (a *Agent) invokeSkill(ctx context.Context, step *models.PlannedStep) (*models.SkillResult, error) {
	stepCtx := make(map[string]any, len(a.state.Context)+len(step.InputContext))
	for k, v := range a.state.Context {
		stepCtx[k] = v
	}
	for k, v := range step.InputContext {
		stepCtx[k] = v
	}

	result, err := a.executor.ExecuteSkill(ctx, step.SkillKey, stepCtx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("skill %s returned no result", step.SkillKey)
	}
	return result, nil
}
