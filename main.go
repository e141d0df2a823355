package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/api"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", ports.Fields{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error(ctx, err, "Journal server exited with error")
		_ = appLogger.Sync()
		os.Exit(1)
	}
	appLogger.Info(ctx, "Application finished gracefully.")
}

func run(ctx context.Context, cfg *config.Config, appLogger *logger.ZapLogger) error {
	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()
	appLogger.Info(ctx, "Database repository initialized", ports.Fields{"path": cfg.DBPath})

	// 4. Initialize Application Services
	journal, err := app.NewJournalService(repo, repo, appLogger, app.WithDefaultMarket(cfg.DefaultMarket))
	if err != nil {
		return err
	}
	stats, err := app.NewStatsService(repo, appLogger)
	if err != nil {
		return err
	}

	// 5. Start HTTP server
	apiServer, err := api.NewServer(journal, stats, appLogger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiServer.Router(),
	}
	srv.RegisterOnShutdown(apiServer.CloseStreams)

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info(ctx, "HTTP server listening", ports.Fields{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Shutdown on SIGINT or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		appLogger.Info(ctx, "Shutdown signal received", ports.Fields{"signal": sig.String()})
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLogger.Info(ctx, "HTTP server stopped")
	return nil
}
