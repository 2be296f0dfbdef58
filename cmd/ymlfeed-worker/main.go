// ymlfeed-worker — генерирует фиды.
//
// Worker:
//   - Получает run.pending из RabbitMQ и подбирает PENDING runs через polling
//   - Строит YML фид по параметрам фида и таблицам CMS
//   - Повторяет неудачные попытки с exponential backoff
//   - Записывает фид в каталог или бакет GCS и публикует run.completed
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/ymlfeed/internal/app"
	"github.com/shaiso/ymlfeed/internal/config"
	"github.com/shaiso/ymlfeed/internal/mq"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/telemetry"
	"github.com/shaiso/ymlfeed/internal/worker"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting ymlfeed-worker")

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := repo.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	sink, closer, err := app.NewSink(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create feed storage", "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	generator, err := app.NewGenerator(cfg, pool, sink, logger)
	if err != nil {
		logger.Error("failed to build feed generator", "error", err)
		os.Exit(1)
	}

	wcfg := worker.Config{
		Runs:      repo.NewRunRepo(pool),
		Feeds:     repo.NewFeedRepo(pool),
		Generator: generator,
		Retry: worker.RetryPolicy{
			MaxAttempts:  cfg.Worker.MaxAttempts,
			InitialDelay: cfg.Worker.BackoffBase,
			MaxDelay:     cfg.Worker.BackoffMax,
			Backoff:      worker.BackoffExponential,
		},
		PollInterval: cfg.Worker.PollInterval,
		Timeout:      cfg.Worker.Timeout,
		Logger:       logger,
	}

	if conn := app.ConnectMQ(ctx, cfg, "ymlfeed-worker", logger); conn != nil {
		defer conn.Close()
		wcfg.Conn = conn
		wcfg.Notifier = mq.NewPublisher(conn, logger)
	}

	w := worker.New(wcfg)
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Serve(gctx, cfg.Server.WorkerPort, app.ServiceMux(app.PoolReady(pool)), logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		w.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ymlfeed-worker stopped")
}
