package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/upb/newsletter/app"
	"github.com/upb/newsletter/config"
	"github.com/upb/newsletter/internal/observability"
	"github.com/upb/newsletter/routes"
	"github.com/upb/newsletter/server"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "newsletter: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pipeline, err := observability.Build(cfg.Observability.ServiceName, cfg.Observability.LogFilter, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to build log pipeline: %w", err)
	}
	if err := observability.Install(pipeline); err != nil {
		return fmt.Errorf("failed to install log pipeline: %w", err)
	}

	logger := zap.L().Named("newsletter")
	defer func() { _ = logger.Sync() }()

	logger.Info("starting newsletter service",
		zap.String("version", version),
		zap.String("environment", cfg.Environment),
		zap.String("log_filter", pipeline.Filter().String()),
	)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		Exporter:       cfg.Observability.TraceExporter,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.OTLPInsecure,
		SampleRate:     cfg.Observability.TracingSampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", zap.Error(err))
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		return err
	}
	defer func() { _ = deps.Close(context.Background()) }()

	ln, err := net.Listen("tcp", cfg.Server.Address())
	if err != nil {
		logger.Error("failed to bind listener", zap.String("address", cfg.Server.Address()), zap.Error(err))
		return err
	}

	if err := server.Run(ctx, ln, routes.SetupRoutes(deps), cfg.Server, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	return nil
}
