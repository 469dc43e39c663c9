package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/foodreg/sampletrail/pkg/audit"
	"github.com/foodreg/sampletrail/pkg/cmd"
	"github.com/foodreg/sampletrail/pkg/log"
	"github.com/foodreg/sampletrail/pkg/otelhelper"
	"github.com/foodreg/sampletrail/pkg/workflow"
)

const (
	defaultPort       = 9084
	defaultSessionTTL = 12 * time.Hour
)

func main() {
	// Missing .env is fine; the flags below read the process environment.
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "sampletrail-api",
		Usage:                 "Serve the sample workflow graph, tracker, and submission API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or a file path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "session-store",
				Usage:   "Officer session store URL (memory or redis://...)",
				Value:   "memory",
				Sources: cli.EnvVars("SESSION_STORE_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("OTEL_TRACING"),
			},
			&cli.BoolFlag{
				Name:    "legacy-inference",
				Usage:   "Infer pre-migration sample progress from legacy date fields",
				Value:   true,
				Sources: cli.EnvVars("LEGACY_INFERENCE"),
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

			logger.InfoContext(ctx, "Initializing Sampletrail API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if command.Bool("tracing") {
				tracerProvider, err := otelhelper.InitTracer(ctx, "sampletrail-api")
				if err != nil {
					return err
				}

				defer func() {
					if err := tracerProvider.Shutdown(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()

				eventBus.WithTracer(tracerProvider.Tracer("sampletrail-api"))
			}

			sessions, err := cmd.NewSessionStore(ctx, command.String("session-store"), defaultSessionTTL)
			if err != nil {
				return err
			}

			defer func() {
				if err := sessions.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close session store", "error", err)
				}
			}()

			var legacy workflow.LegacyInference = workflow.Disabled{}
			if command.Bool("legacy-inference") {
				legacy = workflow.NameHeuristic{}
			}

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				sessions,
				audit.NewMemoryTrail(audit.DefaultCapacity),
				legacy,
			)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
