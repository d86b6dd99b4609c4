package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/notice-suspension-api/api/swagger"
	"github.com/noah-isme/notice-suspension-api/internal/app"
	"github.com/noah-isme/notice-suspension-api/pkg/config"
	"github.com/noah-isme/notice-suspension-api/pkg/logger"
)

// @title Notice Suspension API
// @version 1.0.0
// @description Temporary and permanent suspension, revival and auto-revival of parking notices.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	if err := run(cfg, logr); err != nil {
		logr.Error("server exited", zap.Error(err))
		_ = logr.Sync()
		os.Exit(1)
	}
	_ = logr.Sync()
}

// run owns every resource so deferred cleanup happens before main exits.
func run(cfg *config.Config, logr *zap.Logger) error {
	a, err := app.New(cfg, logr)
	if err != nil {
		return fmt.Errorf("initialise application: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.AutoRevival.Start(ctx)
	defer a.AutoRevival.Stop()

	if cfg.AutoRevival.Enabled {
		sched, err := a.NewScheduler()
		if err != nil {
			return fmt.Errorf("invalid auto revival schedule: %w", err)
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.NewRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logr.Info("shutting down")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	return runErr
}
