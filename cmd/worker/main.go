package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/koinonia-app/koinonia/internal/app"
	"github.com/koinonia-app/koinonia/internal/members"
	"github.com/koinonia-app/koinonia/internal/platform/db"
	"github.com/koinonia-app/koinonia/internal/tags"
	"github.com/koinonia-app/koinonia/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	tagsService := tags.NewService(tags.NewRepository(pool), logger)
	membersService := members.NewService(members.NewRepository(pool), tagsService, logger)

	sweepTask, err := jobs.NewTagRecomputeTask(time.Now())
	if err != nil {
		logger.Error("build tag recompute task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTagRecompute, Handler: jobs.TagRecomputeHandler(membersService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.TagRecomputeCron, Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
