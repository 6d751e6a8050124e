package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	intconfig "github.com/fabianabeda/datadriven-back/internal/config"
	"github.com/fabianabeda/datadriven-back/internal/domain"
	router "github.com/fabianabeda/datadriven-back/internal/http"
	"github.com/fabianabeda/datadriven-back/internal/http/handlers"
	"github.com/fabianabeda/datadriven-back/internal/repositories"
	"github.com/fabianabeda/datadriven-back/internal/services"
	"github.com/fabianabeda/datadriven-back/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := intconfig.Load()
	if err != nil {
		return err
	}

	log, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	client, db, err := intconfig.ConnectDB(context.Background(), cfg.MongoDB, log)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB(client, log)

	repo := repositories.NewReportsRepository(db, repositories.RepositoryConfig{
		Source:  domain.Source(cfg.Reports.Source),
		Options: cfg.ReportOptions(),
		Timeout: cfg.MongoDB.QueryTimeout,
		Breaker: repositories.BreakerSettings{
			Name:             "mongo",
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OpenTimeout:      cfg.Breaker.OpenTimeout,
		},
	}, log)

	reports := services.ReportsService{Store: repo, Options: cfg.ReportOptions()}
	r := router.NewRouter(router.Deps{
		Reports:        handlers.NewReportsHandler(reports, log),
		Export:         handlers.NewExportHandler(services.ExportService{Reports: reports}, log),
		System:         handlers.NewSystemHandler(repo, log),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running",
			zap.String("addr", cfg.Server.Addr),
			zap.String("source", cfg.Reports.Source),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
