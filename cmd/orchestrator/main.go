// Command orchestrator runs the multi-agent product-management
// orchestration server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/prodigypm/orchestrator/internal/agents"
	"github.com/prodigypm/orchestrator/internal/budget"
	"github.com/prodigypm/orchestrator/internal/cache"
	"github.com/prodigypm/orchestrator/internal/config"
	"github.com/prodigypm/orchestrator/internal/gateway"
	"github.com/prodigypm/orchestrator/internal/history"
	"github.com/prodigypm/orchestrator/internal/memory"
	"github.com/prodigypm/orchestrator/internal/monitoring"
	"github.com/prodigypm/orchestrator/internal/provider"
	"github.com/prodigypm/orchestrator/internal/server"
	"github.com/prodigypm/orchestrator/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("orchestrator exited with error")
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.Parse()

	// Best-effort: a missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	ledger := budget.NewLedger(cfg.Budget.Total)
	respCache := cache.New(cfg.Cache.MaxEntries)
	metrics := monitoring.NewMetricsCollector()
	mem := memory.NewStore()

	client, degraded, err := buildProvider(cfg.Provider)
	if err != nil {
		return err
	}

	var gwOpts []gateway.Option
	if degraded {
		gwOpts = append(gwOpts, gateway.WithDegraded())
	}
	gw := gateway.New(ledger, respCache, client, metrics, gwOpts...)

	registry := agents.NewRegistry(mem)

	var store *history.Store
	if cfg.Workflow.DBPath != "" {
		store, err = history.Open(cfg.Workflow.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	hub := server.NewHub()
	engine := workflow.NewEngine(registry, gw, mem, store, metrics,
		workflow.WithQualityThreshold(cfg.Workflow.QualityThreshold),
		workflow.WithHistoryLimit(cfg.Workflow.HistoryLimit),
		workflow.WithProgress(hub.Publish),
	)

	srv := server.New(cfg.Server, gw, engine, registry, hub)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogging configures the global zerolog logger: human-readable console
// output on a terminal, JSON otherwise.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
}

// buildProvider constructs the configured reasoning backend. A missing
// credential is not fatal: the gateway runs in always-local mode.
func buildProvider(cfg config.ProviderConfig) (provider.Client, bool, error) {
	switch cfg.Backend {
	case "nvidia":
		client := provider.NewNVIDIAClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
		if !client.HasCredentials() {
			return client, true, nil
		}
		return client, false, nil
	case "bedrock":
		client, err := provider.NewBedrockClient(context.Background(), cfg.Region)
		if err != nil {
			log.Warn().Err(err).Msg("bedrock client init failed, running always-local")
			return provider.NewNVIDIAClient("", "", cfg.Timeout), true, nil
		}
		return client, false, nil
	default:
		return nil, false, fmt.Errorf("unknown provider backend %q", cfg.Backend)
	}
}
