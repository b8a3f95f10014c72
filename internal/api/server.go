package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/justinas/alice"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	sessionActor "go-skillagent/internal/agents/session/actor"
	"go-skillagent/internal/orchestrator"
	"go-skillagent/internal/skills"
	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/messages"
	"go-skillagent/pkg/models"
)

// EngineFactory builds fresh language engines for one session. The
// understanding engine is stateful (question budget), so sessions never share
// one.
type EngineFactory func(cfg models.AgentConfig) (orchestrator.UnderstandingEngine, orchestrator.PlanningEngine, error)

type createSessionRequest struct {
	OrganizationID      string         `json:"organizationId"`
	UserID              string         `json:"userId"`
	MaxQuestions        int            `json:"maxQuestions,omitempty"`
	ConfidenceThreshold float64        `json:"confidenceThreshold,omitempty"`
	AutoExecute         *bool          `json:"autoExecute,omitempty"`
	ShowProgress        *bool          `json:"showProgress,omitempty"`
	InitialContext      map[string]any `json:"initialContext,omitempty"`
}

type runRequest struct {
	Message string `json:"message"`
}

type respondRequest struct {
	MessageID string `json:"messageId"`
	Response  string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const turnTimeout = 10 * time.Minute

type Server struct {
	ac       *actor.RootContext
	server   *http.Server
	sessions *sessionsCache
	registry *skills.Registry
	engines  EngineFactory
}

func New(ac *actor.RootContext, addr string, registry *skills.Registry, engines EngineFactory) *Server {
	s := &Server{
		ac:       ac,
		sessions: newSessionsCache(),
		registry: registry,
		engines:  engines,
	}

	r := chi.NewRouter()
	r.Use(logMiddleware())
	r.Post("/sessions", s.createSession)
	r.Post("/sessions/{id}/run", s.turnHandler(func(id uuid.UUID, body []byte) (interface{}, error) {
		req := runRequest{}
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		return messages.StartTurn{SessionID: id, Message: req.Message}, nil
	}))
	r.Post("/sessions/{id}/respond", s.turnHandler(func(id uuid.UUID, body []byte) (interface{}, error) {
		req := respondRequest{}
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		return messages.AnswerQuestion{SessionID: id, MessageID: req.MessageID, Response: req.Response}, nil
	}))
	r.Post("/sessions/{id}/execute", s.turnHandler(func(id uuid.UUID, _ []byte) (interface{}, error) {
		return messages.ExecutePlan{SessionID: id}, nil
	}))
	r.Get("/sessions/{id}/state", s.snapshotHandler(messages.GetSnapshot{}, false))
	r.Get("/sessions/{id}/history", s.snapshotHandler(messages.GetSnapshot{}, true))
	r.Post("/sessions/{id}/reset", s.snapshotHandler(messages.ResetSession{}, false))

	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	log.Debug().Msg("create session request")
	req := createSessionRequest{}
	if err := unmarshalRequestBody(r, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}

	cfg := models.DefaultConfig(req.OrganizationID, req.UserID)
	if req.MaxQuestions > 0 {
		cfg.MaxQuestions = req.MaxQuestions
	}
	if req.ConfidenceThreshold > 0 {
		cfg.ConfidenceThreshold = req.ConfidenceThreshold
	}
	if req.AutoExecute != nil {
		cfg.AutoExecute = req.AutoExecute
	}
	if req.ShowProgress != nil {
		cfg.ShowProgress = req.ShowProgress
	}
	cfg.InitialContext = req.InitialContext

	skills.RegisterBuiltins(s.registry, cfg.OrganizationID)

	understanding, planning, err := s.engines(cfg)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error().Err(err).Msg("unable to build engines")
		render.JSON(w, r, errorResponse{Error: "unable to create session"})
		return
	}

	decider := func(reason interface{}) actor.Directive {
		log.Error().Msgf("handling failure for session actor. reason: %v", reason)
		return actor.RestartDirective
	}
	strategy := actor.NewOneForOneStrategy(3, 10000, decider)

	props := actor.PropsFromProducer(sessionActor.New(sessionActor.Deps{
		Config:        cfg,
		Catalog:       s.registry,
		Executor:      s.registry.Executor(cfg.OrganizationID),
		Understanding: understanding,
		Planning:      planning,
	}), actor.WithSupervisor(strategy))
	pid := s.ac.Spawn(props)

	id := uuid.New()
	s.sessions.add(id, pid)

	log.Debug().Str(logger.SessionIDField, id.String()).Msg("session created")
	render.JSON(w, r, struct {
		ID string `json:"id"`
	}{id.String()})
}

func (s *Server) turnHandler(build func(id uuid.UUID, body []byte) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, pid, ok := s.lookup(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "unable to read body"})
			return
		}
		_ = r.Body.Close()
		if len(body) == 0 {
			body = []byte("{}")
		}

		msg, err := build(id, body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "unable to parse body"})
			return
		}

		future := s.ac.RequestFuture(pid, msg, turnTimeout) // blocking
		res, err := future.Result()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Str(logger.SessionIDField, id.String()).Err(err).Msg("turn failed")
			return
		}
		result, ok := res.(messages.TurnResult)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Str(logger.SessionIDField, id.String()).Msg("unknown response from session actor")
			return
		}
		render.JSON(w, r, result)
	}
}

func (s *Server) snapshotHandler(msg interface{}, historyOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, pid, ok := s.lookup(w, r)
		if !ok {
			return
		}

		future := s.ac.RequestFuture(pid, msg, time.Minute)
		res, err := future.Result()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Str(logger.SessionIDField, id.String()).Err(err).Msg("unable to get snapshot")
			return
		}
		snapshot, ok := res.(messages.Snapshot)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error().Str(logger.SessionIDField, id.String()).Msg("unknown response from session actor")
			return
		}
		if historyOnly {
			render.JSON(w, r, struct {
				History []*models.AgentMessage `json:"history"`
			}{snapshot.History})
			return
		}
		render.JSON(w, r, snapshot)
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (uuid.UUID, *actor.PID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse id"})
		return uuid.Nil, nil, false
	}
	pid, ok := s.sessions.get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		log.Debug().Str(logger.SessionIDField, idParam).Msg("cannot find session")
		return uuid.Nil, nil, false
	}
	return id, pid, true
}

func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}

	log.Info().Msg("http server started")
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	return nil
}

func logMiddleware() func(http.Handler) http.Handler {
	c := alice.New()
	c = c.Append(hlog.NewHandler(log.Logger))
	c = c.Append(hlog.RemoteAddrHandler("ip"))
	c = c.Append(hlog.UserAgentHandler("agent"))
	c = c.Append(hlog.RefererHandler("referer"))
	c = c.Append(hlog.RequestIDHandler("req_id", "Request-Id"))
	c = c.Append(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("verb", r.Method).
			Stringer("url", r.URL).
			Int("size", size).
			Int("status", status).
			Int64("duration", duration.Milliseconds()).
			Msg("REQ")
	}))

	return c.Then
}

func unmarshalRequestBody(req *http.Request, output interface{}) error {
	if req.Body == nil {
		return errors.New("invalid body in request")
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	if err = req.Body.Close(); err != nil {
		return err
	}
	if err = json.Unmarshal(body, &output); err != nil {
		return err
	}

	return nil
}
