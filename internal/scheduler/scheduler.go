package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

// ScheduleStore — хранилище расписаний.
type ScheduleStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Schedule, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
}

// RunStore — хранилище runs.
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByIdempotencyKey(ctx context.Context, feedID uuid.UUID, key string) (*domain.Run, error)
}

// FeedStore — хранилище фидов.
type FeedStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error)
}

// Notifier сообщает worker'ам о новом run.
type Notifier interface {
	PublishRunPending(ctx context.Context, runID, feedID uuid.UUID) error
}

// Scheduler — планировщик, обрабатывающий due schedules.
type Scheduler struct {
	schedules ScheduleStore
	runs      RunStore
	feeds     FeedStore
	notifier  Notifier
	logger    *slog.Logger
	batchSize int
	now       func() time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Schedules ScheduleStore
	Runs      RunStore
	Feeds     FeedStore
	Notifier  Notifier // nil — worker забирает runs через polling
	Logger    *slog.Logger
	BatchSize int // количество schedules за один тик (default: 100)

	// Now — источник времени (для тестов).
	Now func() time.Time
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		schedules: cfg.Schedules,
		runs:      cfg.Runs,
		feeds:     cfg.Feeds,
		notifier:  cfg.Notifier,
		logger:    logger,
		batchSize: batchSize,
		now:       now,
	}
}

// TickResult — итог одного тика.
type TickResult struct {
	Due       int
	Processed int
	Created   int
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due schedules (enabled=true, next_due_at <= now)
// 2. Для каждого schedule создаёт run (один на schedule и время)
// 3. Обновляет next_due_at
// 4. Публикует run.pending
//
// Ошибки одного schedule не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	now := s.now()

	schedules, err := s.schedules.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return TickResult{}, fmt.Errorf("list due schedules: %w", err)
	}

	result := TickResult{Due: len(schedules)}
	if len(schedules) == 0 {
		return result, nil
	}

	for i := range schedules {
		sched := &schedules[i]

		created, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			continue
		}

		result.Processed++
		if created {
			result.Created++
		}
	}

	telemetry.RunsScheduled.Add(float64(result.Created))

	s.logger.Info("scheduler tick completed",
		"due", result.Due,
		"processed", result.Processed,
		"runs_created", result.Created,
	)

	return result, nil
}

// processSchedule обрабатывает один schedule.
// Возвращает true, если run был создан (не был дубликатом).
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.Schedule, now time.Time) (bool, error) {
	logger := telemetry.WithScheduleID(s.logger, sched.ID.String())

	if _, err := s.feeds.GetByID(ctx, sched.FeedID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Warn("feed not found for schedule, skipping", "feed_id", sched.FeedID)
			return false, nil
		}
		return false, fmt.Errorf("get feed: %w", err)
	}

	idempKey := sched.RunKey(sched.DueAt(now))

	runID, created, err := s.ensureRun(ctx, sched, idempKey, now)
	if err != nil {
		return false, err
	}

	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		// next_due_at не меняется: повторный тик не создаст дубликат
		logger.Error("failed to calculate next due", "error", err)
		return created, nil
	}

	sched.RecordRun(runID, nextDue)
	if err := s.schedules.Update(ctx, sched); err != nil {
		return created, fmt.Errorf("update schedule: %w", err)
	}

	if s.notifier != nil && created {
		if err := s.notifier.PublishRunPending(ctx, runID, sched.FeedID); err != nil {
			// run уже в БД, worker заберёт его через polling
			logger.Warn("failed to publish run.pending", "run_id", runID, "error", err)
		}
	}

	return created, nil
}

// ensureRun возвращает run для ключа идемпотентности, создавая его при необходимости.
func (s *Scheduler) ensureRun(ctx context.Context, sched *domain.Schedule, key string, now time.Time) (uuid.UUID, bool, error) {
	existing, err := s.runs.GetByIdempotencyKey(ctx, sched.FeedID, key)
	switch {
	case err == nil:
		s.logger.Debug("run already exists", "run_id", existing.ID, "idempotency_key", key)
		return existing.ID, false, nil
	case !errors.Is(err, repo.ErrNotFound):
		return uuid.Nil, false, fmt.Errorf("check idempotency: %w", err)
	}

	run := &domain.Run{
		ID:             uuid.New(),
		FeedID:         sched.FeedID,
		Status:         domain.RunStatusPending,
		Trigger:        domain.RunTriggerSchedule,
		IdempotencyKey: key,
		CreatedAt:      now,
	}

	if err := s.runs.Create(ctx, run); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			// другой экземпляр успел создать run между проверкой и вставкой
			existing, getErr := s.runs.GetByIdempotencyKey(ctx, sched.FeedID, key)
			if getErr != nil {
				return uuid.Nil, false, fmt.Errorf("get existing run: %w", getErr)
			}
			return existing.ID, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("create run: %w", err)
	}

	s.logger.Info("created run from schedule",
		"run_id", run.ID,
		"schedule_id", sched.ID,
		"schedule_name", sched.Name,
		"feed_id", sched.FeedID,
	)

	return run.ID, true, nil
}
