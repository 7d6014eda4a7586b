// pdcheck - Permitted development rights checks for UK properties.
// Copyright (c) 2026 Naxon Solutions
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naxonsolutions/pdcheck/internal/api"
	"github.com/naxonsolutions/pdcheck/internal/bus"
	"github.com/naxonsolutions/pdcheck/internal/cache"
	"github.com/naxonsolutions/pdcheck/internal/domain"
	"github.com/naxonsolutions/pdcheck/internal/facts"
	"github.com/naxonsolutions/pdcheck/internal/planning"
	"github.com/naxonsolutions/pdcheck/internal/repository"
	"github.com/naxonsolutions/pdcheck/internal/rules"
	"github.com/naxonsolutions/pdcheck/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("PDCHECK_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting pdcheck",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()
	if os.Getenv("PDCHECK_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize rule compiler and engine. The statutory registry is always
	// active; operator rules stored in the database are layered on top.
	compiler, err := rules.NewCompiler()
	if err != nil {
		slog.Error("failed to initialize rule compiler", "error", err)
		os.Exit(1)
	}

	engine, err := buildEngine(ctx, repo, compiler)
	if err != nil {
		slog.Error("failed to build rule engine", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", engine.RulesCount())

	// Initialize fact provider
	geocoder := facts.NewPostcodeGeocoder(repo)
	provider := facts.NewProvider(geocoder, repo, cacheImpl, 0)
	slog.Info("fact provider initialized")

	// Initialize planning service
	service := planning.NewService(provider, engine, repo, busImpl)

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("PDCHECK_ASYNC_WORKER") == "true" {
		asyncWorker = worker.New(service, busImpl)
		if err := asyncWorker.Start(ctx); err != nil {
			slog.Error("failed to start async worker", "error", err)
		}
	}

	// Initialize Server
	handler := api.NewHandler(service, repo, cacheImpl, busImpl, compiler)
	srv := api.NewServer(cfg.Server, handler, cfg.Tracing.Enabled)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("pdcheck is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("pdcheck shutdown complete")
}

// buildEngine composes the statutory rules with any enabled operator rules
// stored in the database. A failed database read still yields a working
// engine over the built-ins.
func buildEngine(ctx context.Context, repo domain.Repository, compiler *rules.Compiler) (*rules.Engine, error) {
	configs, err := repo.ListRuleConfigs(ctx)
	if err != nil {
		slog.Warn("failed to list custom rules, starting with built-ins only", "error", err)
		return rules.NewDefaultEngine(), nil
	}

	compiled, err := compiler.CompileAll(configs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile stored rules: %w", err)
	}

	if len(compiled) > 0 {
		slog.Info("loaded custom rules from database", "count", len(compiled))
	}
	return rules.NewEngine(append(rules.DefaultRules(), compiled...)), nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🏠 PDCHECK                  ║")
	fmt.Println("  ║   Permitted Development Rights Checker    ║")
	fmt.Println("  ║     Know before you build.                ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /api/v1/check         - Check a property (async with ?async=1)")
	fmt.Println("    GET  /api/v1/checks?postcode= - List checks for a postcode")
	fmt.Println("    GET  /api/v1/checks/{id}   - Get check by ID")
	fmt.Println("    GET  /api/v1/rules         - List active rules")
	fmt.Println("    POST /api/v1/rules         - Create a custom rule")
	fmt.Println("    DELETE /api/v1/rules/{id}  - Delete a custom rule")
	fmt.Println("    POST /api/v1/rules/reload  - Hot-reload rules from database")
	fmt.Println("    GET  /health               - Health check")
	fmt.Println("    GET  /ready                - Readiness check")
	fmt.Println()
}
