package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"treatment-tracker/internal/adapters/cycles/remote"
	legacysqlite "treatment-tracker/internal/adapters/legacy/sqlite"
	pg "treatment-tracker/internal/adapters/storage/postgres"
	"treatment-tracker/internal/config"
	"treatment-tracker/internal/jobs"
	"treatment-tracker/internal/platform/logger"
	"treatment-tracker/internal/platform/metrics"
	"treatment-tracker/internal/router"
)

// @title Treatment Tracker API
// @version 1.0
// @description Motor de adherencia de medicación por ciclo y migración de datos legacy.
// @BasePath /
func main() {
	configPath := flag.String("config", "", "archivo de configuración opcional (yaml/json/toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	defer func() {
		if z, ok := lg.(*logger.ZapLogger); ok {
			_ = z.Sync()
		}
	}()

	if err := run(cfg, lg); err != nil {
		lg.Error("server stopped with error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("treatment_tracker")
	opts := router.Options{Logger: lg, Metrics: m}

	// Postgres si hay DSN; si no, in-memory (modo dev)
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pg.EnsureSchema(ctx, db); err != nil {
			return err
		}
		opts.DB = db
		lg.Info("using postgres storage", nil)
	} else {
		lg.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	if cfg.LegacySQLitePath != "" {
		src, err := legacysqlite.Open(cfg.LegacySQLitePath)
		if err != nil {
			return err
		}
		defer src.Close()
		opts.Legacy = src
		lg.Info("legacy sqlite source enabled", map[string]any{"path": cfg.LegacySQLitePath})
	}

	if cfg.CyclesBaseURL != "" {
		p, err := remote.New(remote.Config{
			BaseURL: cfg.CyclesBaseURL,
			APIKey:  cfg.CyclesAPIKey,
			Timeout: cfg.CyclesTimeout,
		}, lg)
		if err != nil {
			return err
		}
		opts.Cycles = p
		lg.Info("remote cycles provider enabled", map[string]any{"base_url": cfg.CyclesBaseURL})
	}

	app := router.New(opts)

	var sweep *jobs.ReconcileSweep
	if cfg.SweepEnabled() {
		sweep = jobs.NewReconcileSweep(app.Medications, jobs.SweepOptions{Logger: lg, Observer: m})
		if err := sweep.Start(cfg.SweepSchedule); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.Handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sweep != nil {
		sweep.Stop(shutdownCtx)
	}
	return srv.Shutdown(shutdownCtx)
}
