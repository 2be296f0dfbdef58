// ymlfeed-api — HTTP API для управления фидами, их генерациями
// и расписаниями.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/ymlfeed/internal/api"
	"github.com/shaiso/ymlfeed/internal/app"
	"github.com/shaiso/ymlfeed/internal/config"
	"github.com/shaiso/ymlfeed/internal/mq"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting ymlfeed-api")

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
	logger.Info("connected to database")

	// Preview не пишет в хранилище, поэтому sink не нужен.
	previewer, err := app.NewGenerator(cfg, pool, nil, logger)
	if err != nil {
		logger.Error("failed to build feed generator", "error", err)
		os.Exit(1)
	}

	hcfg := api.Config{
		Feeds:     repo.NewFeedRepo(pool),
		Runs:      repo.NewRunRepo(pool),
		Schedules: repo.NewScheduleRepo(pool),
		Previewer: previewer,
		Logger:    logger,
	}

	if conn := app.ConnectMQ(ctx, cfg, "ymlfeed-api", logger); conn != nil {
		defer conn.Close()
		hcfg.Notifier = mq.NewPublisher(conn, logger)
	}

	mux := app.ServiceMux(app.PoolReady(pool))
	api.NewHandler(hcfg).RegisterRoutes(mux)

	if err := app.Serve(ctx, cfg.Server.APIPort, mux, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("ymlfeed-api stopped")
}
