package models

// Skill is one catalog-registered capability the agent can invoke.
type Skill struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Active      bool   `json:"active"`
}

// SkillSummary is the trimmed view of a skill handed to the language engines;
// full metadata stays out of prompts.
type SkillSummary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Summary returns the prompt-facing view of the skill.
func (s Skill) Summary() SkillSummary {
	return SkillSummary{Key: s.Key, Name: s.Name, Description: s.Description, Category: s.Category}
}

// SkillResult is the outcome of one skill execution. A failed execution is a
// result with Success false, not a transport error. Output is whatever the
// skill produced; key/value outputs flow into the session context.
type SkillResult struct {
	Success bool   `json:"success"`
	Output  any    `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}
