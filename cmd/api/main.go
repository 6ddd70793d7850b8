package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/findteam/identity-service/internal/config"
	"github.com/findteam/identity-service/internal/observability"
	"github.com/findteam/identity-service/internal/persistence"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "identity-service",
		Usage:   "Account registration, login and email verification API",
		Version: Version,
		Action:  runServer,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: runServer,
			},
			{
				Name:      "migrate",
				Usage:     "Apply or inspect database migrations",
				ArgsUsage: "up|down|status",
				Action:    runMigrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	direction := cmd.Args().First()
	if direction == "" {
		direction = persistence.MigrateUp
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if err := persistence.Migrate(ctx, pg.PoolHandle(), direction, logger); err != nil {
		return err
	}
	logger.Info("migrations finished", zap.String("direction", direction))
	return nil
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
