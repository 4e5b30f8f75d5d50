package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/adapter/handler"
	"github.com/srgjo27/smart_parking/internal/app"
	"github.com/srgjo27/smart_parking/internal/config"
	"github.com/srgjo27/smart_parking/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger.Setup(cfg.Log)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	parking, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to start parking engine: %v", err)
	}
	defer parking.Close()

	if err := parking.Migrate(ctx); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	if err := parking.SeedLots(ctx); err != nil {
		logrus.Fatalf("Failed to seed lots: %v", err)
	}

	if err := parking.SeedSubscribers(ctx); err != nil {
		logrus.Fatalf("Failed to seed subscribers: %v", err)
	}

	var workers sync.WaitGroup
	workers.Add(3)

	go func() {
		defer workers.Done()
		parking.Monitor.Run(ctx)
	}()

	go func() {
		defer workers.Done()
		parking.Reservations.RunBackgroundCleanup(ctx, cfg.Cleanup.Interval)
	}()

	go func() {
		defer workers.Done()
		parking.Reports.RunMonthly(ctx, cfg.Reports.Interval)
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(parking.Handler(), handler.NewHealthHandler(parking.HealthChecks())),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.Infof("Server starting on port :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	stop()
	workers.Wait()

	logrus.Info("Server exiting")
}
