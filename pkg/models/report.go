package models

// ExecutionReport is the terminal summary of one turn. History keeps every
// report generated in the session.
type ExecutionReport struct {
	Accomplished []string       `json:"accomplished"`
	Outputs      map[string]any `json:"outputs"`
	Gaps         []SkillGap     `json:"gaps"`
	NextSteps    []string       `json:"nextSteps"`
	Success      bool           `json:"success"`
	Summary      string         `json:"summary"`
}
