package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sicko7947/slims/config"
	"github.com/sicko7947/slims/engine"
	"github.com/sicko7947/slims/example/sample_intake"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger := cfg.Logger()
	log.Logger = logger

	client, err := cfg.Client(logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}

	// Initialize engine
	eng, err := engine.NewEngine(client,
		engine.WithLogger(logger),
		engine.WithConfig(engine.EngineConfig{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine")
	}

	flow, err := sample_intake.NewSampleIntakeFlow()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sample intake flow")
	}
	if err := eng.AddFlow(context.Background(), flow); err != nil {
		log.Fatal().Err(err).Msg("Failed to add flow")
	}

	// Start server in a goroutine
	go func() {
		if err := eng.Listen(""); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with 30 second timeout for running steps
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := eng.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
