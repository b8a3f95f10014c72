package actor

import (
	"context"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/rs/zerolog/log"

	"go-skillagent/internal/orchestrator"
	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/messages"
	"go-skillagent/pkg/models"
)

// Deps carries everything a session needs. Engines are per-session (the
// understanding engine counts questions), so producers get fresh ones.
type Deps struct {
	Config        models.AgentConfig
	Catalog       orchestrator.SkillCatalog
	Executor      orchestrator.SkillExecutor
	Understanding orchestrator.UnderstandingEngine
	Planning      orchestrator.PlanningEngine
}

// Session hosts one agent. Turn commands arrive as messages; the actor drains
// the turn's event stream and answers with the collected events, so callers
// drive it with RequestFuture.
type Session struct {
	agent *orchestrator.Agent
}

func New(deps Deps) actor.Producer {
	return func() actor.Actor {
		return &Session{
			agent: orchestrator.New(deps.Config, deps.Catalog, deps.Executor, deps.Understanding, deps.Planning),
		}
	}
}

func (s *Session) Receive(ac actor.Context) {
	l := log.With().Fields(map[string]interface{}{logger.ActorIDField: ac.Self().GetId(), logger.AgentNameField: "session"}).Logger()
	switch msg := ac.Message().(type) {
	case *actor.Started:
		l.Debug().Msg("starting actor")
	case *actor.Stopping:
		l.Debug().Msg("stopping actor")
	case *actor.Stopped:
		l.Debug().Msg("stopped actor")
	case *actor.Restarting:
		l.Debug().Msg("restarting actor")
	case messages.StartTurn:
		l.Debug().Str(logger.SessionIDField, msg.SessionID.String()).Msg("StartTurn received")
		events := drain(s.agent.Run(context.Background(), msg.Message))
		ac.Respond(messages.TurnResult{SessionID: msg.SessionID, Events: events, State: s.agent.GetState()})
	case messages.AnswerQuestion:
		l.Debug().Str(logger.SessionIDField, msg.SessionID.String()).Str(logger.MessageIDField, msg.MessageID).Msg("AnswerQuestion received")
		events := drain(s.agent.Respond(context.Background(), msg.MessageID, msg.Response))
		ac.Respond(messages.TurnResult{SessionID: msg.SessionID, Events: events, State: s.agent.GetState()})
	case messages.ExecutePlan:
		l.Debug().Str(logger.SessionIDField, msg.SessionID.String()).Msg("ExecutePlan received")
		events := drain(s.agent.Execute(context.Background()))
		ac.Respond(messages.TurnResult{SessionID: msg.SessionID, Events: events, State: s.agent.GetState()})
	case messages.GetSnapshot:
		ac.Respond(messages.Snapshot{State: s.agent.GetState(), History: s.agent.GetHistory()})
	case messages.ResetSession:
		s.agent.Reset()
		ac.Respond(messages.Snapshot{State: s.agent.GetState(), History: s.agent.GetHistory()})
	default:
		l.Warn().Msgf("unknown message: %v", msg)
	}
}

func drain(stream <-chan models.AgentEvent) []models.AgentEvent {
	events := make([]models.AgentEvent, 0, 8)
	for ev := range stream {
		events = append(events, ev)
	}
	return events
}
