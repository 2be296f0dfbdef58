// Package app собирает зависимости сервисов ymlfeed из конфигурации:
// хранилище фидов, конвейер генерации, RabbitMQ и служебный HTTP сервер.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/ymlfeed/internal/config"
	"github.com/shaiso/ymlfeed/internal/feed"
	"github.com/shaiso/ymlfeed/internal/mq"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewSink выбирает хранилище фидов: бакет GCS или локальный каталог.
// Возвращённый io.Closer нужно закрыть при остановке сервиса.
func NewSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Sink, io.Closer, error) {
	if cfg.UseGCS() {
		sink, err := storage.NewGCSSink(ctx, cfg.GCS())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("feeds are uploaded to gcs", "bucket", cfg.Output.GCSBucket)
		return sink, sink, nil
	}

	sink := storage.NewLocalSink(cfg.Output.Dir)
	logger.Info("feeds are written to disk", "dir", sink.Dir())
	return sink, nopCloser{}, nil
}

// NewGenerator собирает конвейер генерации поверх таблиц CMS.
// sink может быть nil: такой Generator умеет только Preview.
func NewGenerator(cfg *config.Config, pool *pgxpool.Pool, sink storage.Sink, logger *slog.Logger) (*feed.Generator, error) {
	site, err := cfg.FeedSite()
	if err != nil {
		return nil, err
	}

	renderer := feed.NewRenderer(feed.RendererConfig{
		Site:      site,
		Variables: cfg.FeedVariables(),
	})

	return feed.NewGenerator(
		repo.NewCategoryRepo(pool),
		repo.NewArticleRepo(pool),
		renderer,
		sink,
		logger,
	), nil
}

// ConnectMQ подключается к RabbitMQ и объявляет топологию.
// Если брокер недоступен, возвращает nil: сервисы работают через polling.
func ConnectMQ(ctx context.Context, cfg *config.Config, name string, logger *slog.Logger) *mq.Connection {
	conn, err := mq.NewConnection(cfg.RabbitMQ.URL, name, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		return nil
	}

	if err := mq.SetupTopology(ctx, conn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}
	logger.Info("RabbitMQ connected")
	return conn
}

// ServiceMux возвращает mux с /healthz и /metrics.
func ServiceMux(ready func() error) *http.ServeMux {
	started := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(started).Round(time.Second))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// PoolReady проверяет доступность БД для /healthz.
func PoolReady(pool *pgxpool.Pool) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
}

// Serve запускает HTTP сервер и останавливает его при отмене ctx.
func Serve(ctx context.Context, port string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
