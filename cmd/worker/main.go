package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/taskmanager/pkg/app"
	"github.com/ghuser/taskmanager/pkg/cache"
	"github.com/ghuser/taskmanager/pkg/config"
	"github.com/ghuser/taskmanager/pkg/database"
	"github.com/ghuser/taskmanager/pkg/events"
	"github.com/ghuser/taskmanager/pkg/logger"
	"github.com/ghuser/taskmanager/pkg/telemetry"
	"github.com/ghuser/taskmanager/pkg/workflows"
	appsvcs "github.com/ghuser/taskmanager/services/task/application/services"
	taskworkflows "github.com/ghuser/taskmanager/services/task/application/workflows"
	taskevents "github.com/ghuser/taskmanager/services/task/domain/events"
	"github.com/ghuser/taskmanager/services/task/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
	if err != nil {
		log.Error("failed to initialize temporal client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer temporalClient.Close()

	appConfig := &app.Application{
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	sweepWorker, err := startSweepWorker(ctx, appConfig)
	if err != nil {
		log.Error("failed to start maintenance worker", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer sweepWorker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	topics := map[string]func(context.Context, *message.Message) error{
		taskevents.TopicItemCreated: handleItemChanged(a),
		taskevents.TopicItemUpdated: handleItemChanged(a),
		taskevents.TopicItemDeleted: handleItemDeleted(a),
	}

	registered := make([]string, 0, len(topics))
	for topic, handler := range topics {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		registered = append(registered, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", registered)
	return nil
}

// handleItemChanged returns a handler for item.created and item.updated
// events. Handlers must be idempotent — EventBus retries up to 3× on failure.
// Drops the stale cache entry, then re-reads the item so the Redis cache
// holds the current populated relations.
func handleItemChanged(a *app.Application) func(context.Context, *message.Message) error {
	svcs := appsvcs.New(a)
	itemCache := cache.NewItemCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt taskevents.ItemEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		// Invalidate before re-reading; GetByID would otherwise serve the
		// stale entry straight back out of the cache.
		if err := itemCache.Delete(ctx, evt.ItemID); err != nil {
			return err
		}
		// GetByID populates relations and warms the cache as a side effect.
		if _, err := svcs.Item.GetByID(ctx, evt.ItemID, nil); err != nil {
			// Cache warming is best-effort; the item may already be gone.
			a.Logger.WarnContext(ctx, "cache warm failed for item event",
				"item_id", evt.ItemID, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "cache warmed", "item_id", evt.ItemID)
		}
		return nil
	}
}

// handleItemDeleted drops the cache entry of a deleted item.
func handleItemDeleted(a *app.Application) func(context.Context, *message.Message) error {
	itemCache := cache.NewItemCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt taskevents.ItemEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		if err := itemCache.Delete(ctx, evt.ItemID); err != nil {
			a.Logger.WarnContext(ctx, "cache invalidation failed for item.deleted",
				"item_id", evt.ItemID, "error", err)
		}
		return nil
	}
}

// startSweepWorker runs the Temporal worker for the maintenance task queue
// and schedules the hourly orphan sweep.
func startSweepWorker(ctx context.Context, a *app.Application) (worker.Worker, error) {
	uow := postgres.NewUnitOfWork(a.Db, nil, a.Logger)

	w := worker.New(a.TemporalClient.Client, taskworkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflow(taskworkflows.OrphanSweepWorkflow)
	w.RegisterActivity(taskworkflows.NewActivities(uow, a.Logger))

	if err := w.Start(); err != nil {
		return nil, err
	}

	_, err := a.TemporalClient.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           taskworkflows.OrphanSweepWorkflowID,
		TaskQueue:    taskworkflows.TaskQueue,
		CronSchedule: taskworkflows.OrphanSweepCron,
	}, taskworkflows.OrphanSweepWorkflow)
	if err != nil {
		// An already-running cron workflow is fine; anything else is not.
		a.Logger.WarnContext(ctx, "orphan sweep schedule not started", "error", err)
	}

	a.Logger.Info("maintenance worker started", "task_queue", taskworkflows.TaskQueue)
	return w, nil
}
