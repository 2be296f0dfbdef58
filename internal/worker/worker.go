package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/feed"
	"github.com/shaiso/ymlfeed/internal/mq"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 20
	defaultTimeout      = 5 * time.Minute
)

// RunStore — хранилище runs.
type RunStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	ListPending(ctx context.Context, limit int) ([]domain.Run, error)
	Claim(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	Update(ctx context.Context, run *domain.Run) error
}

// FeedStore — хранилище фидов.
type FeedStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error)
}

// Generator строит и записывает фид.
type Generator interface {
	Generate(ctx context.Context, f *domain.Feed) (*feed.Result, error)
}

// Notifier публикует итог генерации.
type Notifier interface {
	PublishRunCompleted(ctx context.Context, payload mq.RunCompletedPayload) error
}

// Worker генерирует фиды по runs.
//
// Worker — stateless компонент, который:
//   - получает run.pending из RabbitMQ (event-driven)
//   - периодически проверяет PENDING runs в БД (polling fallback)
//   - атомарно забирает run (PENDING → RUNNING)
//   - генерирует фид с retry и backoff
//   - публикует run.completed
//
// Workers масштабируются горизонтально: Claim гарантирует,
// что run обработает только один экземпляр.
type Worker struct {
	runs      RunStore
	feeds     FeedStore
	generator Generator
	notifier  Notifier
	conn      *mq.Connection

	consumer *mq.Consumer

	retry        RetryPolicy
	pollInterval time.Duration
	batchSize    int
	timeout      time.Duration

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	Runs      RunStore
	Feeds     FeedStore
	Generator Generator

	// Notifier — nil, если RabbitMQ недоступен.
	Notifier Notifier

	// Conn — соединение для consumer'а runs.pending; nil — только polling.
	Conn *mq.Connection

	Retry        RetryPolicy   // zero — DefaultRetryPolicy()
	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // runs за один poll (default: 20)
	Timeout      time.Duration // таймаут одной попытки (default: 5m)

	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		runs:         cfg.Runs,
		feeds:        cfg.Feeds,
		generator:    cfg.Generator,
		notifier:     cfg.Notifier,
		conn:         cfg.Conn,
		retry:        retry,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		timeout:      timeout,
		logger:       logger,
	}
}

// Start запускает consumer (если есть соединение) и polling.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"max_attempts", w.retry.MaxAttempts,
	)

	if w.conn != nil {
		w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    mq.QueueRunsPending,
			Handler:  w.handleRunPending,
			Prefetch: 1,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("run consumer error", "error", err)
			}
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx)
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт завершения текущей генерации.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}

// pollLoop — цикл polling для fallback.
func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу: подхватываем runs, созданные пока воркер был выключен
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (w *Worker) poll(ctx context.Context) {
	runs, err := w.runs.ListPending(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to list pending runs", "error", err)
		return
	}

	if len(runs) == 0 {
		return
	}

	w.logger.Debug("poll found pending runs", "count", len(runs))

	for i := range runs {
		if ctx.Err() != nil {
			return
		}
		if err := w.processRun(ctx, runs[i].ID); err != nil && !isSkip(err) {
			w.logger.Error("failed to process run from poll",
				"run_id", runs[i].ID,
				"error", err,
			)
		}
	}
}

// isSkip — run обработан кем-то другим, это не ошибка.
func isSkip(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrRunNotPending)
}
