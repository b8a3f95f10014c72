package models

// AgentConfig configures one agent session. Immutable after construction;
// defaults are applied once by the agent constructor rather than at call
// sites. AutoExecute and ShowProgress are pointers so an unset field can take
// its default (true) instead of the zero value.
type AgentConfig struct {
	OrganizationID      string         `json:"organizationId"`
	UserID              string         `json:"userId"`
	MaxQuestions        int            `json:"maxQuestions"`
	ConfidenceThreshold float64        `json:"confidenceThreshold"`
	AutoExecute         *bool          `json:"autoExecute,omitempty"`
	ShowProgress        *bool          `json:"showProgress,omitempty"`
	InitialContext      map[string]any `json:"initialContext,omitempty"`
}

const (
	DefaultMaxQuestions        = 5
	DefaultConfidenceThreshold = 0.8
)

// DefaultConfig returns the config an agent gets when the caller specifies
// nothing beyond identity.
func DefaultConfig(organizationID, userID string) AgentConfig {
	return AgentConfig{
		OrganizationID:      organizationID,
		UserID:              userID,
		MaxQuestions:        DefaultMaxQuestions,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		AutoExecute:         Bool(true),
		ShowProgress:        Bool(true),
	}
}

// Bool returns a pointer to v, for populating optional config fields.
func Bool(v bool) *bool {
	return &v
}
