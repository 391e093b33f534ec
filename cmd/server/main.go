package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/lms_backoffice/internal/app"
	"github.com/Freeeeeet/lms_backoffice/internal/config"
	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/memory"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/postgres"
	"github.com/Freeeeeet/lms_backoffice/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	os.Exit(serve(cfg, logger))
}

// serve возвращает код выхода; логгер сбрасывается до os.Exit
func serve(cfg *config.Config, logger *zap.Logger) int {
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	clock := service.SystemClock(cfg.Location)
	svc := service.New(store, clock, logger)

	sweeper := app.NewSweeper(svc.Ledger, cfg.StatusSweepInterval, logger.Named("sweeper"))
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := app.NewHTTPServer(cfg, svc, logger)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreDriver),
			zap.String("timezone", cfg.Location.String()),
		)
		serveErr <- server.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	if err := <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	}

	pool, err := postgres.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	if cfg.MigrationsAuto {
		migrator, err := app.NewMigrator(pool, logger.Named("migrations"))
		if err != nil {
			pool.Close()
			return nil, err
		}
		defer migrator.Close()

		if err := migrator.Up(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return postgres.NewStore(pool), nil
}
