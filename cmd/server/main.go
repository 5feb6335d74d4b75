package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	jwttoken "offsetledger/internal/jwt_token"
	"offsetledger/internal/ledger/handler"
	ledgermetrics "offsetledger/internal/ledger/metrics"
	"offsetledger/internal/ledger/service"
	"offsetledger/internal/platform/config"
	"offsetledger/internal/platform/httpserver"
	"offsetledger/internal/platform/logger"
	"offsetledger/internal/platform/metrics"
	httptransport "offsetledger/internal/transport/http"
	"offsetledger/pkg/platform/audit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("offsetledger stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.New(registry)

	deps, err := openDependencies(ctx, cfg, log, httpMetrics)
	if err != nil {
		return err
	}
	defer deps.Close()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(audit.NewPublisher(deps.auditStore)),
		service.WithMetrics(ledgermetrics.New(registry)),
		service.WithAdmins(cfg.Ledger.AdminPrincipals...),
		service.WithMinVintageYear(cfg.Ledger.MinVintageYear),
		service.WithReverification(cfg.Ledger.AllowReverification),
	}
	if len(cfg.Ledger.Categories) > 0 {
		opts = append(opts, service.WithCategories(cfg.Ledger.Categories...))
	}
	svc, err := service.New(deps.ledgerStore, deps.settler, opts...)
	if err != nil {
		return fmt.Errorf("build ledger service: %w", err)
	}
	if len(cfg.Ledger.AdminPrincipals) == 0 {
		log.Warn("no LEDGER_ADMIN_PRINCIPALS configured; verifier administration is unavailable")
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Ledger:      handler.New(svc, log),
		Validator:   jwttoken.NewJWTServiceAdapter(jwtService),
		Idempotency: deps.idempotency,
		Metrics:     httpMetrics,
		Gatherer:    registry,
		Health:      deps.health,
		Logger:      log,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting offsetledger", "addr", cfg.Server.Addr, "store", deps.storeKind)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	if deps.relay != nil {
		g.Go(func() error {
			log.Info("starting audit outbox relay", "topic", cfg.Kafka.AuditTopic)
			return deps.relay.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("offsetledger shut down")
	return nil
}
