package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/helpflow/triago/pkg/analysis/claude"
	"github.com/helpflow/triago/pkg/cmd"
	"github.com/helpflow/triago/pkg/janitor"
	"github.com/helpflow/triago/pkg/log"
	"github.com/helpflow/triago/pkg/metrics"
	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/notify"
	"github.com/helpflow/triago/pkg/otelhelper"
	"github.com/helpflow/triago/pkg/sources/queue"
	"github.com/helpflow/triago/pkg/triage"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	app := &cli.Command{
		Name:                  "triago-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to triage incoming tickets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:     "anthropic-api-key",
				Usage:    "API key for the Claude analysis provider",
				Required: true,
				Sources:  cli.EnvVars("ANTHROPIC_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "anthropic-model",
				Usage:   "Model for the Claude analysis provider",
				Value:   "",
				Sources: cli.EnvVars("ANTHROPIC_MODEL"),
			},
			&cli.StringFlag{
				Name:    "slack-webhook-url",
				Usage:   "Slack incoming webhook for notifications",
				Value:   "",
				Sources: cli.EnvVars("SLACK_WEBHOOK_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis address for the intake queue (disabled if empty)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-queue",
				Usage:   "Redis list name for the intake queue",
				Value:   "triago:tickets",
				Sources: cli.EnvVars("REDIS_QUEUE"),
			},
			&cli.FloatFlag{
				Name:    "confidence-threshold",
				Usage:   "Minimum confidence for automatic resolution",
				Value:   models.DefaultConfidenceThreshold,
				Sources: cli.EnvVars("CONFIDENCE_THRESHOLD"),
			},
			&cli.BoolFlag{
				Name:    "disable-auto-resolution",
				Usage:   "Escalate every ticket instead of resolving automatically",
				Sources: cli.EnvVars("DISABLE_AUTO_RESOLUTION"),
			},
			&cli.BoolFlag{
				Name:    "disable-verification",
				Usage:   "Skip the verification stage",
				Sources: cli.EnvVars("DISABLE_VERIFICATION"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("triago-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Triago Worker")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "triago-worker", logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer, err := otelhelper.NewTracer(ctx, "triago-worker")
			if err != nil {
				return err
			}

			channels := []notify.Channel{notify.NewLogChannel(logger)}
			if webhook := command.String("slack-webhook-url"); webhook != "" {
				channels = append(channels, notify.NewSlackChannel(webhook))
			}

			notifier := notify.NewProvider(logger, channels...)
			registry := cmd.NewRegistry(logger, persistence, notifier)

			cfg := models.DefaultTriageConfig()
			cfg.ConfidenceThreshold = command.Float("confidence-threshold")
			cfg.EnableAutoResolution = !command.Bool("disable-auto-resolution")
			cfg.EnableVerification = !command.Bool("disable-verification")

			service := triage.NewService(cfg, triage.Dependencies{
				Tickets:       persistence.TicketRepository(),
				Search:        persistence.SearchRepository(),
				KnowledgeBase: persistence.KnowledgeBaseRepository(),
				Analysis: claude.NewProvider(
					command.String("anthropic-api-key"),
					command.String("anthropic-model"),
					logger,
				),
				Workflows:     persistence.WorkflowRepository(),
				Registry:      registry,
				Learning:      metrics.NewAccumulator(persistence.MetricsRepository(), logger),
				Observability: triage.NewMetrics(prometheus.DefaultRegisterer),
			}, logger)

			var queueSource *queue.Source
			if redisURL := command.String("redis-url"); redisURL != "" {
				queueSource, err = queue.NewSource(redisURL, "", 0, command.String("redis-queue"), logger)
				if err != nil {
					return err
				}
			}

			var reaper *janitor.Janitor
			if workflowReaper, ok := persistence.WorkflowRepository().(janitor.WorkflowReaper); ok {
				reaper = janitor.NewJanitor(workflowReaper, cfg.MaxProcessingTime, logger)
			}

			worker := NewWorkerManager(
				workerID,
				persistence,
				service,
				eventBus,
				tracer,
				queueSource,
				reaper,
				logger,
			)

			err = worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start event-driven worker", "error", err)
			}

			return nil
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
