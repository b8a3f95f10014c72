package orchestrator

import (
	"context"
	"time"

	"go-skillagent/pkg/models"
)

// emitter delivers one turn's events: synchronously to subscribers first,
// then onto the turn's stream. Subscriber dispatch is best-effort; a panicking
// handler is logged and the remaining handlers still run.
type emitter struct {
	ctx context.Context
	ch  chan models.AgentEvent
	a   *Agent
}

func (em *emitter) send(ev models.AgentEvent) {
	ev.Timestamp = time.Now()
	em.a.dispatch(ev)
	select {
	case em.ch <- ev:
	case <-em.ctx.Done():
	}
}

func (a *Agent) dispatch(ev models.AgentEvent) {
	a.subMu.Lock()
	handlers := make([]func(models.AgentEvent), 0, len(a.subs))
	for _, h := range a.subs {
		handlers = append(handlers, h)
	}
	a.subMu.Unlock()

	for _, h := range handlers {
		a.safeDispatch(h, ev)
	}
}

func (a *Agent) safeDispatch(h func(models.AgentEvent), ev models.AgentEvent) {
	defer func() {
		if r := recover(); r != nil {
			a.l.Error().Interface("panic", r).Str("event", string(ev.Kind)).Msg("event handler panicked")
		}
	}()
	h(ev)
}
