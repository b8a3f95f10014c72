package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	zLog "github.com/rs/zerolog/log"

	"go-skillagent/internal/api"
	"go-skillagent/internal/engines/planning"
	"go-skillagent/internal/engines/understanding"
	"go-skillagent/internal/orchestrator"
	"go-skillagent/internal/skills"
	"go-skillagent/pkg/logger"
	"go-skillagent/pkg/models"
)

// expects OPENAI_API_KEY; ADDR and LOG_LEVEL are optional
func main() {
	log.Println("starting server")
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if err := logger.NewGlobal(level, true); err != nil {
		log.Panicf("failed to initialize logger: %v", err)
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	registry := skills.NewRegistry()
	engines := func(cfg models.AgentConfig) (orchestrator.UnderstandingEngine, orchestrator.PlanningEngine, error) {
		u, err := understanding.New(cfg.MaxQuestions, cfg.ConfidenceThreshold)
		if err != nil {
			return nil, nil, err
		}
		p, err := planning.New()
		if err != nil {
			return nil, nil, err
		}
		return u, p, nil
	}

	system := actor.NewActorSystem().Root
	app := api.New(system, addr, registry, engines)

	go func() {
		if err := app.Start(); err != nil {
			zLog.Panic().Err(err).Msg("server crash")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	stop()
	zLog.Info().Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		zLog.Panic().Err(err).Msg("server forced to shutdown")
	}

	zLog.Info().Msg("server exiting")
}
