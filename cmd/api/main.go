package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/ecosense/internal/application"
	appai "github.com/bryanwahyu/ecosense/internal/application/ai"
	appfootprint "github.com/bryanwahyu/ecosense/internal/application/footprint"
	appsolar "github.com/bryanwahyu/ecosense/internal/application/solar"
	"github.com/bryanwahyu/ecosense/internal/config"
	"github.com/bryanwahyu/ecosense/internal/infra/httpserver"
	"github.com/bryanwahyu/ecosense/internal/logging"
	"github.com/bryanwahyu/ecosense/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkers := map[string]middleware.HealthChecker{}

	// init ai client
	client, err := newAIClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ai client: %w", err)
	}
	aiSvc := appai.NewService(client, cfg.AI.Timeout, logger.Named("ai"))
	if !aiSvc.Configured() {
		logger.Warn("no AI API key configured, analyses fall back to heuristics",
			zap.String("provider", cfg.AI.Provider))
	}
	checkers["ai"] = middleware.ConfiguredChecker{Configured: aiSvc.Configured}

	// init knowledge sources
	sources, closeKnowledge, err := newKnowledge(ctx, cfg, logger, checkers)
	if err != nil {
		return fmt.Errorf("knowledge: %w", err)
	}
	defer closeKnowledge()

	// init sample store
	samples, err := newSamples(ctx, cfg, checkers)
	if err != nil {
		return fmt.Errorf("samples: %w", err)
	}

	clock := application.SystemClock{}
	footprintSvc := &appfootprint.Service{
		AI:        aiSvc,
		Knowledge: sources,
		Samples:   samples,
		Clock:     clock,
		Logger:    logger.Named("footprint"),
	}
	solarSvc := appsolar.NewService(aiSvc, clock, logger.Named("solar"),
		cfg.Solar.BatteryCapacityWh, cfg.Solar.Appliances)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer limiter.Close()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpserver.NewRouter(httpserver.Options{
			Footprint:      footprintSvc,
			Solar:          solarSvc,
			Checkers:       checkers,
			RateLimiter:    limiter,
			Logger:         logger.Named("http"),
			Clock:          clock,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			MaxSimulation:  cfg.Solar.MaxSimulation,
			CORSOrigins:    cfg.Server.CORSOrigins,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("ai_provider", cfg.AI.Provider),
			zap.String("knowledge_driver", cfg.Knowledge.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
