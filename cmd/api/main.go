package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/viralesveras/lora-tag-helper/internal/adapter/sidecar"
	"github.com/viralesveras/lora-tag-helper/internal/app"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/handler"
	"github.com/viralesveras/lora-tag-helper/internal/delivery/http/router"
	"github.com/viralesveras/lora-tag-helper/internal/usecase"
	"github.com/viralesveras/lora-tag-helper/pkg/config"
	"github.com/viralesveras/lora-tag-helper/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// --- Logger ---
	log := logger.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	log.Info("Logger initialized", zap.String("level", cfg.LogLevel))

	ctx := context.Background()

	// --- Capabilities and stores ---
	caps, err := app.NewCapabilities(cfg, log)
	if err != nil {
		log.Fatal("Invalid capability configuration", zap.Error(err))
	}
	backends, err := app.NewBackends(ctx, cfg, log)
	if err != nil {
		log.Fatal("Unable to initialise stores", zap.Error(err))
	}
	defer backends.Close()

	// --- Use Cases ---
	datasets := usecase.NewDatasetManager(caps, sidecar.Factory(log), backends.Stores, cfg.ChecklistCacheTTL(), log)
	exporter := usecase.NewSubsetExporter(caps, backends.Stores.Presets, backends.History, log)
	var interrogation *usecase.Interrogation
	if caps.Interrogator != nil {
		interrogation = usecase.NewInterrogation(caps.Interrogator, cfg.InterrogateWorkers, log)
	}

	if cfg.DatasetDir != "" {
		if _, err := datasets.Open(ctx, cfg.DatasetDir); err != nil {
			log.Error("Failed to open dataset", zap.String("path", cfg.DatasetDir), zap.Error(err))
		}
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(datasets, exporter, interrogation, cfg.SubsetOutputDir, log)
	httpRouter := router.New(apiHandler, log, 10*time.Minute)

	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     httpRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}
