package models

// StepStatus is the lifecycle state of a single planned step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// IsTerminal reports whether the step is in a final state.
func (s StepStatus) IsTerminal() bool {
	return s == StepStatusCompleted || s == StepStatusFailed
}

// PlannedStep is one unit of work in an execution plan. Order must equal the
// step's index in ExecutionPlan.Steps; steps are mutated in place during
// execution and never re-ordered.
type PlannedStep struct {
	SkillKey     string         `json:"skillKey"`
	Skill        *Skill         `json:"skill,omitempty"`
	Purpose      string         `json:"purpose"`
	InputContext map[string]any `json:"inputContext,omitempty"`
	Order        int            `json:"order"`
	Status       StepStatus     `json:"status"`
	Result       *SkillResult   `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// SkillGap is a capability the planner needs but the catalog cannot satisfy.
type SkillGap struct {
	Capability string `json:"capability"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ExecutionPlan is the ordered plan produced for one goal.
type ExecutionPlan struct {
	Steps         []*PlannedStep `json:"steps"`
	Gaps          []SkillGap     `json:"gaps"`
	CanAccomplish string         `json:"canAccomplish"`
}

// PlanValidation is the result of structural plan validation. Issues are
// warnings only and never abort a turn.
type PlanValidation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}
