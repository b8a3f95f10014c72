package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/models"
)

// Agent turns a free-text goal into a clarification dialogue, a plan over the
// skill catalog, a partial-failure-tolerant execution and a terminal report.
// One Agent owns one session; instances are independent and share nothing.
//
// Run, Respond and Execute each drive one turn and return its event stream.
// The stream is closed at the turn boundary: a suspension in the understand
// phase, a terminal complete event, or a fatal error event. Turns on the same
// Agent are serialized; callers must drain the stream.
type Agent struct {
	cfg           models.AgentConfig
	autoExecute   bool
	showProgress  bool
	catalog       SkillCatalog
	executor      SkillExecutor
	understanding UnderstandingEngine
	planning      PlanningEngine

	mu          sync.Mutex // serializes turns and state access
	state       *models.AgentState
	assessments []*Assessment

	subMu   sync.Mutex
	subs    map[int]func(models.AgentEvent)
	nextSub int

	l zerolog.Logger
}

// New constructs an Agent, applying config defaults once. InitialContext is
// copied, never aliased.
func New(cfg models.AgentConfig, catalog SkillCatalog, executor SkillExecutor, understanding UnderstandingEngine, planning PlanningEngine) *Agent {
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = models.DefaultMaxQuestions
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = models.DefaultConfidenceThreshold
	}
	a := &Agent{
		cfg:           cfg,
		autoExecute:   cfg.AutoExecute == nil || *cfg.AutoExecute,
		showProgress:  cfg.ShowProgress == nil || *cfg.ShowProgress,
		catalog:       catalog,
		executor:      executor,
		understanding: understanding,
		planning:      planning,
		subs:          map[int]func(models.AgentEvent){},
	}
	a.state = a.freshState()
	a.l = log.With().Str(logger.SessionIDField, a.state.SessionID).Logger()
	return a
}

func (a *Agent) freshState() *models.AgentState {
	ctx := map[string]any{}
	for k, v := range a.cfg.InitialContext {
		ctx[k] = v
	}
	return &models.AgentState{
		Phase:               models.PhaseIdle,
		Context:             ctx,
		ExecutedSteps:       []*models.PlannedStep{},
		Gaps:                []models.SkillGap{},
		ConversationHistory: []*models.AgentMessage{},
		SessionID:           uuid.New().String(),
		StartedAt:           time.Now(),
	}
}

// Config returns the session configuration.
func (a *Agent) Config() models.AgentConfig {
	return a.cfg
}

// Run starts a turn from a user message. If understanding does not converge
// the stream ends after a question message and the agent stays suspended in
// the understand phase; otherwise the plan/execute/report cascade follows.
func (a *Agent) Run(ctx context.Context, message string) <-chan models.AgentEvent {
	return a.turn(ctx, func(ctx context.Context, em *emitter) error {
		a.pushHistory(em, userMessage(message), false)
		understood, err := a.understand(ctx, em, message)
		if err != nil || !understood {
			return err
		}
		return a.proceed(ctx, em)
	})
}

// Respond resumes a turn suspended in the understand phase. messageID names
// the question being answered; the structured content of the answer is merged
// into the session context before understanding re-runs with the answer text.
func (a *Agent) Respond(ctx context.Context, messageID, response string) <-chan models.AgentEvent {
	return a.turn(ctx, func(ctx context.Context, em *emitter) error {
		if q := a.findMessage(messageID); q != nil && q.Type == models.MessageTypeQuestion {
			extracted, err := a.understanding.ExtractFromResponse(ctx, q, response, a.state.Context)
			if err != nil {
				a.l.Warn().Err(err).Msg("could not extract context from answer")
			} else {
				a.mergeContext(extracted)
			}
		} else {
			a.l.Warn().Str(logger.MessageIDField, messageID).Msg("respond: question message not found")
		}
		a.pushHistory(em, userMessage(response), false)
		understood, err := a.understand(ctx, em, response)
		if err != nil || !understood {
			return err
		}
		return a.proceed(ctx, em)
	})
}

// Execute runs the current plan without re-deriving it, then reports. Valid
// only when a plan exists; used when AutoExecute is off or to retry a plan
// with failed steps still pending elsewhere.
func (a *Agent) Execute(ctx context.Context) <-chan models.AgentEvent {
	return a.turn(ctx, func(ctx context.Context, em *emitter) error {
		if a.state.Plan == nil {
			return errors.New("no plan to execute")
		}
		a.setPhase(em, models.PhaseExecute)
		a.executePlan(ctx, em)
		a.runReport(em)
		em.send(models.AgentEvent{Kind: models.EventComplete, Phase: a.state.Phase})
		return nil
	})
}

// proceed is the post-understanding cascade shared by Run and Respond.
func (a *Agent) proceed(ctx context.Context, em *emitter) error {
	if err := a.runPlan(ctx, em); err != nil {
		return err
	}
	if a.autoExecute && a.state.Plan != nil && len(a.state.Plan.Steps) > 0 {
		a.setPhase(em, models.PhaseExecute)
		a.executePlan(ctx, em)
	}
	a.runReport(em)
	em.send(models.AgentEvent{Kind: models.EventComplete, Phase: a.state.Phase})
	return nil
}

// turn serializes one driver invocation and owns its event stream. A fatal
// error ends the stream with a single error event and records state.Error
// without advancing the phase further.
func (a *Agent) turn(ctx context.Context, fn func(context.Context, *emitter) error) <-chan models.AgentEvent {
	ch := make(chan models.AgentEvent)
	go func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		defer close(ch)
		em := &emitter{ctx: ctx, ch: ch, a: a}
		if err := fn(ctx, em); err != nil {
			a.state.Error = err.Error()
			a.l.Error().Err(err).Str(logger.PhaseField, string(a.state.Phase)).Msg("turn aborted")
			em.send(models.AgentEvent{Kind: models.EventError, Phase: a.state.Phase, Error: err.Error()})
		}
	}()
	return ch
}

// GetState returns a read-only snapshot of the session state.
func (a *Agent) GetState() models.AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// GetHistory returns a copy of the conversation history. Messages are
// append-only and never mutated, so sharing the entries is safe.
func (a *Agent) GetHistory() []*models.AgentMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*models.AgentMessage, len(a.state.ConversationHistory))
	copy(out, a.state.ConversationHistory)
	return out
}

// OnEvent subscribes to every event of every turn. The returned function
// unsubscribes. Handler panics are contained and never reach the phase loop.
func (a *Agent) OnEvent(handler func(models.AgentEvent)) func() {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = handler
	return func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		delete(a.subs, id)
	}
}

// Reset returns the agent to idle with a fresh session id and empty history.
// The configuration is untouched; the understanding engine's counters are
// cleared too.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = a.freshState()
	a.assessments = nil
	a.understanding.Reset()
	a.l = log.With().Str(logger.SessionIDField, a.state.SessionID).Logger()
	a.l.Info().Msg("session reset")
}

func (a *Agent) setPhase(em *emitter, p models.Phase) {
	if a.state.Phase == p {
		return
	}
	a.state.Phase = p
	a.l.Debug().Str(logger.PhaseField, string(p)).Msg("phase change")
	em.send(models.AgentEvent{Kind: models.EventPhaseChange, Phase: p})
}

// pushHistory appends to the conversation. Agent-authored messages are also
// surfaced as message events; user messages are recorded silently.
func (a *Agent) pushHistory(em *emitter, msg *models.AgentMessage, emit bool) {
	a.state.ConversationHistory = append(a.state.ConversationHistory, msg)
	if emit {
		em.send(models.AgentEvent{Kind: models.EventMessage, Phase: a.state.Phase, Message: msg})
	}
}

func (a *Agent) findMessage(id string) *models.AgentMessage {
	for _, m := range a.state.ConversationHistory {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (a *Agent) firstUserMessage() string {
	for _, m := range a.state.ConversationHistory {
		if m.Type == models.MessageTypeUser {
			return m.Content
		}
	}
	return ""
}

// mergeContext overlays new keys onto the session context. The context is
// additive for the whole session; only Reset clears it.
func (a *Agent) mergeContext(extra map[string]any) {
	for k, v := range extra {
		a.state.Context[k] = v
	}
}

func (a *Agent) snapshotLocked() models.AgentState {
	s := *a.state
	s.Context = make(map[string]any, len(a.state.Context))
	for k, v := range a.state.Context {
		s.Context[k] = v
	}
	s.ExecutedSteps = cloneSteps(a.state.ExecutedSteps)
	s.ConversationHistory = append([]*models.AgentMessage{}, a.state.ConversationHistory...)
	s.Gaps = append([]models.SkillGap{}, a.state.Gaps...)
	if a.state.Plan != nil {
		p := *a.state.Plan
		p.Steps = cloneSteps(a.state.Plan.Steps)
		p.Gaps = append([]models.SkillGap{}, a.state.Plan.Gaps...)
		s.Plan = &p
	}
	return s
}

func cloneSteps(in []*models.PlannedStep) []*models.PlannedStep {
	out := make([]*models.PlannedStep, len(in))
	for i, st := range in {
		c := *st
		out[i] = &c
	}
	return out
}

func userMessage(content string) *models.AgentMessage {
	return &models.AgentMessage{
		ID:        uuid.New().String(),
		Type:      models.MessageTypeUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func newMessage(t models.MessageType, content string, payload models.MessagePayload) *models.AgentMessage {
	return &models.AgentMessage{
		ID:        uuid.New().String(),
		Type:      t,
		Content:   content,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
