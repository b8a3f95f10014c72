package orchestrator

import (
	"fmt"
	"strings"

	"go-skillagent/pkg/models"
	"go-skillagent/pkg/template"
)

// runReport always runs, even when nothing was planned or executed.
func (a *Agent) runReport(em *emitter) {
	a.setPhase(em, models.PhaseReport)
	report := a.buildReport()

	text, err := renderReport(report)
	if err != nil {
		a.l.Warn().Err(err).Msg("report message render failed")
		text = report.Summary
	}
	msg := newMessage(models.MessageTypeReport, text, models.ReportPayload{Report: report})
	a.pushHistory(em, msg, true)
	em.send(models.AgentEvent{Kind: models.EventReport, Phase: a.state.Phase, Report: report})
}

func (a *Agent) buildReport() *models.ExecutionReport {
	var completed []*models.PlannedStep
	for _, step := range a.state.ExecutedSteps {
		if step.Status == models.StepStatusCompleted {
			completed = append(completed, step)
		}
	}
	var failed []*models.PlannedStep
	if a.state.Plan != nil {
		for _, step := range a.state.Plan.Steps {
			if step.Status == models.StepStatusFailed {
				failed = append(failed, step)
			}
		}
	}

	accomplished := make([]string, 0, len(completed))
	outputs := map[string]any{}
	for _, step := range completed {
		accomplished = append(accomplished, stepDisplayName(step))
		if step.Result != nil && step.Result.Output != nil {
			outputs[step.SkillKey] = step.Result.Output
		}
	}

	nextSteps := make([]string, 0, len(a.state.Gaps)+1)
	for _, gap := range a.state.Gaps {
		if gap.Suggestion != "" {
			nextSteps = append(nextSteps, gap.Suggestion)
		} else {
			nextSteps = append(nextSteps, fmt.Sprintf("Set up %s", gap.Capability))
		}
	}
	if len(failed) > 0 {
		keys := make([]string, 0, len(failed))
		for _, step := range failed {
			keys = append(keys, step.SkillKey)
		}
		nextSteps = append(nextSteps, fmt.Sprintf("Retry failed steps: %s", strings.Join(keys, ", ")))
	}

	return &models.ExecutionReport{
		Accomplished: accomplished,
		Outputs:      outputs,
		Gaps:         append([]models.SkillGap{}, a.state.Gaps...),
		NextSteps:    nextSteps,
		Success:      len(completed) > 0,
		Summary:      summarize(len(completed), a.state.Gaps),
	}
}

// summarize picks the report summary by exact precedence: full success,
// partial success with gaps, gaps only, nothing done.
func summarize(completed int, gaps []models.SkillGap) string {
	switch {
	case completed > 0 && len(gaps) == 0:
		return fmt.Sprintf("Completed successfully! %d action(s) executed.", completed)
	case completed > 0:
		return fmt.Sprintf("Partially complete. %d action(s) done. %d capability gap(s) identified.", completed, len(gaps))
	case len(gaps) > 0:
		names := make([]string, 0, len(gaps))
		for _, gap := range gaps {
			names = append(names, gap.Capability)
		}
		return fmt.Sprintf("Could not complete the request. Missing capabilities: %s", strings.Join(names, ", "))
	default:
		return "No actions were executed. Please try a different request."
	}
}

func stepDisplayName(step *models.PlannedStep) string {
	if step.Skill != nil && step.Skill.Name != "" {
		return step.Skill.Name
	}
	return step.SkillKey
}

const reportMessageTemplate = `{{.Summary}}{{if .Accomplished}}

Done:
{{range .Accomplished}}- {{.}}
{{end}}{{end}}{{if .Gaps}}
Missing capabilities:
{{range .Gaps}}- {{.Capability}}
{{end}}{{end}}{{if .NextSteps}}
Next steps:
{{range .NextSteps}}- {{.}}
{{end}}{{end}}`

func renderReport(report *models.ExecutionReport) (string, error) {
	return template.Parse(reportMessageTemplate, report)
}
