// ymlfeed-scheduler — создаёт runs по расписаниям.
//
// Экземпляров может быть несколько: тики выполняет только лидер,
// удерживающий pg advisory lock.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/ymlfeed/internal/app"
	"github.com/shaiso/ymlfeed/internal/config"
	"github.com/shaiso/ymlfeed/internal/mq"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/scheduler"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting ymlfeed-scheduler")

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
	logger.Info("db connected")

	scfg := scheduler.Config{
		Schedules: repo.NewScheduleRepo(pool),
		Runs:      repo.NewRunRepo(pool),
		Feeds:     repo.NewFeedRepo(pool),
		Logger:    logger,
	}

	if conn := app.ConnectMQ(ctx, cfg, "ymlfeed-scheduler", logger); conn != nil {
		defer conn.Close()
		scfg.Notifier = mq.NewPublisher(conn, logger)
	}

	lock := repo.NewAdvisoryLock(pool, cfg.Scheduler.LockKey)
	loop := scheduler.NewLoop(scheduler.New(scfg), lock, cfg.Scheduler.TickInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := loop.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return app.Serve(gctx, cfg.Server.SchedulerPort, app.ServiceMux(app.PoolReady(pool)), logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("scheduler exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ymlfeed-scheduler stopped")
}
