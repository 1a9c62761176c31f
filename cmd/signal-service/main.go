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

	"github.com/LavaJover/shvark-signal-service/internal/app/background"
	"github.com/LavaJover/shvark-signal-service/internal/app/setup"
	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	zapLog, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg, zapLog, nil)
	if err != nil {
		zapLog.Fatal("failed to init dependencies", zap.Error(err))
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zapLog.Warn("failed to close dependencies", zap.Error(err))
		}
	}()

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		zapLog.Fatal("failed to init usecases", zap.Error(err))
	}

	// Periodic workers
	tasks := background.NewBackgroundTasks(ucs.Gate, ucs.Sweeper, ucs.Monitor, cfg, zapLog.Named("background"))
	scheduler, err := tasks.StartAll(ctx)
	if err != nil {
		zapLog.Fatal("failed to schedule background tasks", zap.Error(err))
	}

	// Kafka signal intake
	consumerDone := make(chan struct{})
	if signalConsumer := setup.InitializeConsumer(deps, ucs); signalConsumer != nil {
		go func() {
			defer close(consumerDone)
			if err := signalConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLog.Error("signal consumer stopped", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:           setup.InitializeRouter(deps, ucs),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("http server started", zap.String("addr", server.Addr), zap.String("storage", cfg.SignalDB.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("http server shutdown failed", zap.Error(err))
	}
	scheduler.Stop()
	<-consumerDone
	zapLog.Info("shutdown complete")
}
