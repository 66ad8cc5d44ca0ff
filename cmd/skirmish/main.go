// Package main is the entry point for Skirmish.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/samdwyer/skirmish/internal/game"
	"github.com/samdwyer/skirmish/internal/logging"
	"github.com/samdwyer/skirmish/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns every resource that needs cleanup, so its defers always run
// before main exits.
func run() error {
	// Load .env file for local development
	// This makes HONEYCOMB_SKIRMISH_API_KEY available
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	setupOTelEnv()

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	cfg, err := game.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open combat log: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	g, err := game.New(cfg, logger)
	if err != nil {
		logger.Error("game init failed", zap.Error(err))
		return fmt.Errorf("failed to initialize game: %w", err)
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		logger.Error("game error", zap.Error(err))
		return fmt.Errorf("game error: %w", err)
	}
	return nil
}

// setupOTelEnv configures OTEL environment variables from our custom env vars.
func setupOTelEnv() {
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")

	apiKey := os.Getenv("HONEYCOMB_SKIRMISH_API_KEY")
	dataset := os.Getenv("HONEYCOMB_SKIRMISH_DATASET")
	if dataset == "" {
		dataset = "skirmish"
	}
	if apiKey != "" {
		os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
			fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	}
}
