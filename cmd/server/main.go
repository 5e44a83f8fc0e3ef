package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/config"
	"github.com/Simplici0/burritos/internal/db"
	"github.com/Simplici0/burritos/internal/events"
	"github.com/Simplici0/burritos/internal/ledger"
	"github.com/Simplici0/burritos/internal/live"
	"github.com/Simplici0/burritos/internal/logger"
	"github.com/Simplici0/burritos/internal/metrics"
	"github.com/Simplici0/burritos/internal/migrations"
	"github.com/Simplici0/burritos/internal/scheduler"
	"github.com/Simplici0/burritos/internal/seed"
	"github.com/Simplici0/burritos/internal/store"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	ledger      *ledger.Service
	db          *sql.DB
	hub         *live.Hub
	metrics     *metrics.Metrics
	validate    *validator.Validate
	log         *zap.Logger
	reportWeeks int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "burritos: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database, logger.Named(log, "migrations")); err != nil {
		return err
	}

	if cfg.SeedDefaults {
		stats, err := seed.Run(ctx, database)
		if err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
		log.Info("seed completed", zap.Int("inserts", stats.Inserts))
	}

	broker := events.NewBroker()
	defer broker.Close()

	st := store.New(database, broker, logger.Named(log, "store"))
	svc := ledger.New(st, calendar.SystemClock{Location: cfg.Location()}, logger.Named(log, "ledger"))
	hub := live.NewHub(logger.Named(log, "live"))
	m := metrics.New()

	sched := scheduler.NewScheduler(scheduler.Config{
		ReconcileSpec:    cfg.ReconcileCron,
		WeeklyReportSpec: cfg.WeeklyReportCron,
		ReportWeeks:      cfg.ReportWeeks,
		Location:         cfg.Location(),
	}, svc, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &server{
		ledger:      svc,
		db:          database,
		hub:         hub,
		metrics:     m,
		validate:    newValidator(),
		log:         logger.Named(log, "http"),
		reportWeeks: cfg.ReportWeeks,
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	liveChanges, cancelLive := broker.Subscribe()
	defer cancelLive()
	metricChanges, cancelMetrics := broker.Subscribe()
	defer cancelMetrics()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		hub.Follow(gctx, liveChanges)
		return nil
	})
	g.Go(func() error {
		m.Follow(gctx, metricChanges, svc, logger.Named(log, "metrics"))
		return nil
	})
	g.Go(func() error {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
