package skills

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"go-skillagent/internal/orchestrator"
	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/models"
)

// Handler executes a skill against the step's merged context.
type Handler func(ctx context.Context, input map[string]any) (map[string]any, error)

type registration struct {
	skill   models.Skill
	handler Handler
}

// Registry is an in-memory per-organization skill catalog that can also
// execute what it lists. It backs both gateway interfaces the agent needs.
type Registry struct {
	mu   sync.RWMutex
	orgs map[string]map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{orgs: map[string]map[string]registration{}}
}

// Register adds a skill for an organization. Re-registering a key replaces
// the previous handler.
func (r *Registry) Register(organizationID string, skill models.Skill, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[organizationID]
	if !ok {
		org = map[string]registration{}
		r.orgs[organizationID] = org
	}
	org[skill.Key] = registration{skill: skill, handler: handler}
}

// ListSkills returns the organization's skills sorted by key. Inactive skills
// show up only when includeInactive is set.
func (r *Registry) ListSkills(_ context.Context, organizationID string, includeInactive bool) ([]models.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Skill
	for _, reg := range r.orgs[organizationID] {
		if !reg.skill.Active && !includeInactive {
			continue
		}
		out = append(out, reg.skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Executor returns the execution gateway bound to one organization.
func (r *Registry) Executor(organizationID string) orchestrator.SkillExecutor {
	return &orgExecutor{r: r, organizationID: organizationID}
}

type orgExecutor struct {
	r              *Registry
	organizationID string
}

// ExecuteSkill runs the registered handler. Unknown keys and handler errors
// both come back as failed results, never as transport errors.
func (e *orgExecutor) ExecuteSkill(ctx context.Context, skillKey string, stepContext map[string]any) (*models.SkillResult, error) {
	e.r.mu.RLock()
	reg, ok := e.r.orgs[e.organizationID][skillKey]
	e.r.mu.RUnlock()
	if !ok {
		return &models.SkillResult{Success: false, Error: fmt.Sprintf("skill %s is not registered", skillKey)}, nil
	}

	log.Debug().Str(logger.SkillField, skillKey).Msg("executing skill")
	output, err := reg.handler(ctx, stepContext)
	if err != nil {
		return &models.SkillResult{Success: false, Error: err.Error()}, nil
	}
	return &models.SkillResult{Success: true, Output: mapToAny(output)}, nil
}

func mapToAny(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}
