package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/foodreg/sampletrail/pkg/cmd"
	"github.com/foodreg/sampletrail/pkg/log"
	"github.com/foodreg/sampletrail/pkg/services"
)

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("seed")

	command := &cli.Command{
		Name:  "sampletrail-seed",
		Usage: "Seed the default sample lifecycle graph and settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or a file path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			graphService := services.NewGraph(persistence, nil, logger)

			return Seed(ctx, graphService, logger)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}
