package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Freeeeeet/lms_backoffice/internal/app"
	"github.com/Freeeeeet/lms_backoffice/internal/config"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status|version]\n", os.Args[0])
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("Migrations need STORE_DRIVER=%s", config.DriverPostgres)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	os.Exit(migrate(context.Background(), cfg, command, logger))
}

// migrate возвращает код выхода; логгер сбрасывается до os.Exit
func migrate(ctx context.Context, cfg *config.Config, command string, logger *zap.Logger) int {
	defer logger.Sync()

	if err := run(ctx, cfg, command, logger); err != nil {
		logger.Error("Migration failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, command string, logger *zap.Logger) error {
	pool, err := postgres.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "status":
		return migrator.Status(ctx)
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		logger.Info("Current migration version", zap.Int64("version", version))
		return nil
	}

	flag.Usage()
	return fmt.Errorf("unknown command %q", command)
}
