package orchestrator

import (
	"context"
	"fmt"

	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/models"
)

// understand runs one assessment round. It returns false with a nil error when
// the engine wants another answer; the agent then stays suspended in the
// understand phase until Respond is called.
func (a *Agent) understand(ctx context.Context, em *emitter, message string) (bool, error) {
	a.setPhase(em, models.PhaseUnderstand)

	// A new round of understanding supersedes whatever was planned before.
	a.state.Plan = nil
	a.state.Gaps = []models.SkillGap{}

	assessment, err := a.understanding.Assess(ctx, AssessInput{
		Message:         message,
		Context:         a.state.Context,
		History:         a.state.ConversationHistory,
		AvailableSkills: a.listSkillSummaries(ctx),
	})
	if err != nil {
		return false, fmt.Errorf("assess: %w", err)
	}
	a.assessments = append(a.assessments, assessment)

	if !assessment.Understood {
		q := a.understanding.CreateQuestionMessage(assessment)
		a.pushHistory(em, q, true)
		a.l.Info().Str(logger.MessageIDField, q.ID).Msg("waiting for clarification")
		return false, nil
	}

	a.mergeContext(assessment.ExtractedContext)
	a.state.Goal = a.understanding.BuildGoal(a.firstUserMessage(), a.assessments, a.state.Context)
	a.assessments = nil

	info := newMessage(models.MessageTypeInfo, fmt.Sprintf("Understood. Working on: %s", a.state.Goal.Statement), nil)
	a.pushHistory(em, info, true)
	return true, nil
}

// listSkillSummaries fails open: a catalog outage degrades to an empty list
// rather than aborting the turn.
func (a *Agent) listSkillSummaries(ctx context.Context) []models.SkillSummary {
	skills := a.listSkills(ctx)
	out := make([]models.SkillSummary, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Summary())
	}
	return out
}

func (a *Agent) listSkills(ctx context.Context) []models.Skill {
	skills, err := a.catalog.ListSkills(ctx, a.cfg.OrganizationID, false)
	if err != nil {
		a.l.Warn().Err(err).Msg("skill catalog unavailable, continuing with none")
		return nil
	}
	return skills
}
