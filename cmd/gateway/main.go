// Command gateway runs the real-time conversational gateway: it accepts
// WebSocket client connections, mediates them against a live generative
// model session, and dispatches sub-agent work through the A2A
// dispatcher, schema-validated and cultural-validated end to end.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/cultural"
	"github.com/lookatitude/beluga-ai/dispatch"
	"github.com/lookatitude/beluga-ai/gateway"
	"github.com/lookatitude/beluga-ai/livemodel"
	"github.com/lookatitude/beluga-ai/memory"
	"github.com/lookatitude/beluga-ai/metrics"
	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/schema"
	"github.com/lookatitude/beluga-ai/session"
	"github.com/lookatitude/beluga-ai/subagents"
	"github.com/lookatitude/beluga-ai/validate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := o11y.NewLogger(o11y.WithLogLevel(cfg.LogLevel), o11y.WithJSON())
	ctx := o11y.WithLogger(context.Background(), logger)

	shutdownTracer, err := o11y.InitTracer("taleweave-gateway")
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer shutdownTracer()

	healthRegistry := o11y.NewHealthRegistry()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.ProjectID,
		Location: cfg.Region,
	})
	if err != nil {
		return fmt.Errorf("creating genai client: %w", err)
	}

	store := memory.NewInMemorySessionStore()

	textGen := subagents.NewGeminiTextGenerator(client, cfg.TextModelID)
	imageGen := subagents.NewGeminiImageGenerator(client, cfg.ImageModelID)

	schemas := validate.NewRegistry()
	dispatcher := dispatch.New(schemas)
	breakers := resilience.NewRegistry(3, 30*time.Second)

	culturalValidator := cultural.New(cultural.WithThresholds(cfg.CulturalConfidenceThreshold, cfg.CulturalRejectThreshold))
	culturalAgent := subagents.NewCulturalAgent(culturalValidator, textGen)

	producers := session.NewProducers(
		subagents.NewStoryAgent(textGen),
		subagents.NewRiddleAgent(textGen),
		subagents.NewVisualAgent(imageGen),
	)

	liveProvider, err := livemodel.Get(livemodel.ProviderName)
	if err != nil {
		return fmt.Errorf("resolving live-model provider: %w", err)
	}

	deps := &gateway.Deps{
		Dispatcher:   dispatcher,
		Breakers:     breakers,
		Cultural:     culturalAgent,
		LiveProvider: liveProvider,
		Producers:    producers,
		Store:        store,
		Summarizer:   summarizerAdapter{gen: textGen},
	}

	registry := gateway.NewRegistry()
	handler := gateway.NewHandler(deps, registry)
	health := gateway.NewHealth(registry, healthRegistry)

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("/healthz/live", health.Liveness)
	mux.HandleFunc("/healthz/ready", health.Readiness)
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived.
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "gateway listening", "addr", cfg.ListenAddr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil

	case sig := <-shutdown:
		logger.Info(ctx, "shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "graceful shutdown failed", "error", err)
			if err := srv.Close(); err != nil {
				logger.Error(ctx, "force close failed", "error", err)
			}
		}
		logger.Info(ctx, "gateway stopped")
		return nil
	}
}

// summarizerAdapter adapts a subagents.TextGenerator into a
// memory.Summarizer, condensing a window of turns into prose with the
// same text model the sub-agents use.
type summarizerAdapter struct {
	gen subagents.TextGenerator
}

func (s summarizerAdapter) Summarize(ctx context.Context, turns []schema.ConversationTurn) (string, error) {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	return s.gen.GenerateText(ctx, b.String(),
		"Summarize the conversation so far in two or three sentences.")
}
