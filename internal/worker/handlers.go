package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/feed"
	"github.com/shaiso/ymlfeed/internal/mq"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

// handleRunPending обрабатывает событие run.pending.
func (w *Worker) handleRunPending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RunPendingPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse run.pending payload", "error", err)
		return err
	}

	w.logger.Debug("received run.pending event",
		"run_id", payload.RunID,
		"feed_id", payload.FeedID,
	)

	if err := w.processRun(ctx, payload.RunID); err != nil {
		// Ожидаемые ситуации — ack
		if isSkip(err) {
			w.logger.Debug("run not processed", "run_id", payload.RunID, "reason", err)
			return nil
		}
		return err
	}

	return nil
}

// processRun забирает run, генерирует фид и сохраняет итог.
//
// Возвращает ошибку только для инфраструктурных проблем (БД);
// ошибка генерации фиксируется в run как FAILED.
func (w *Worker) processRun(ctx context.Context, runID uuid.UUID) error {
	run, err := w.runs.Claim(ctx, runID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		case errors.Is(err, repo.ErrInvalidState):
			return ErrRunNotPending
		default:
			return fmt.Errorf("claim run: %w", err)
		}
	}

	logger := telemetry.WithFeedID(telemetry.WithRunID(w.logger, run.ID.String()), run.FeedID.String())
	logger.Info("run started", "attempt", run.Attempt, "trigger", run.Trigger)

	result, genErr := w.generate(telemetry.WithLogger(ctx, logger), run)

	// Остановка воркера: run возвращается в очередь для другого экземпляра
	if genErr != nil && ctx.Err() != nil {
		run.Status = domain.RunStatusPending
		run.StartedAt = nil
		if err := w.runs.Update(context.WithoutCancel(ctx), run); err != nil {
			return fmt.Errorf("release run: %w", err)
		}
		logger.Warn("run released on shutdown")
		return ctx.Err()
	}

	// Run могли отменить через API во время генерации
	if current, err := w.runs.GetByID(ctx, run.ID); err == nil && current.Status == domain.RunStatusCancelled {
		logger.Info("run cancelled during generation")
		return nil
	}

	if genErr == nil {
		run.MarkSucceeded(result.OffersCount, result.Location)
		if err := w.runs.Update(ctx, run); err != nil {
			return fmt.Errorf("update run to succeeded: %w", err)
		}

		telemetry.FeedGenerations.WithLabelValues("succeeded").Inc()
		telemetry.OffersRendered.Add(float64(result.OffersCount))
		telemetry.GenerationDuration.Observe(result.Duration.Seconds())

		logger.Info("run succeeded",
			"attempt", run.Attempt,
			"offers", result.OffersCount,
			"location", result.Location,
		)
	} else {
		run.MarkFailed(genErr.Error())
		if err := w.runs.Update(ctx, run); err != nil {
			return fmt.Errorf("update run to failed: %w", err)
		}

		telemetry.FeedGenerations.WithLabelValues("failed").Inc()

		logger.Warn("run failed", "attempt", run.Attempt, "error", genErr)
	}

	w.publishCompletion(ctx, run)
	return nil
}

// generate загружает фид и выполняет генерацию с retry.
func (w *Worker) generate(ctx context.Context, run *domain.Run) (*feed.Result, error) {
	f, err := w.feeds.GetByID(ctx, run.FeedID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, run.FeedID)
		}
		return nil, fmt.Errorf("get feed: %w", err)
	}

	for {
		result, err := w.attempt(ctx, f)
		if err == nil {
			return result, nil
		}

		if !isRetriable(err) || !run.CanRetry(w.retry.MaxAttempts) || ctx.Err() != nil {
			return nil, err
		}

		delay := calculateBackoff(run.Attempt, w.retry)
		w.logger.Warn("generation failed, retrying",
			"run_id", run.ID,
			"attempt", run.Attempt,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		run.Attempt++
		if err := w.runs.Update(ctx, run); err != nil {
			return nil, fmt.Errorf("update run for retry: %w", err)
		}
		telemetry.GenerationRetries.Inc()
	}
}

// attempt — одна попытка генерации с таймаутом.
func (w *Worker) attempt(ctx context.Context, f *domain.Feed) (*feed.Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	result, err := w.generator.Generate(attemptCtx, f)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s: %v", ErrGenerationTimeout, w.timeout, err)
	}
	return result, err
}

// publishCompletion публикует run.completed.
func (w *Worker) publishCompletion(ctx context.Context, run *domain.Run) {
	if w.notifier == nil {
		return
	}

	payload := mq.RunCompletedPayload{
		RunID:       run.ID,
		FeedID:      run.FeedID,
		Status:      string(run.Status),
		OffersCount: run.OffersCount,
		Location:    run.Location,
		Error:       run.Error,
		Attempt:     run.Attempt,
	}

	if err := w.notifier.PublishRunCompleted(ctx, payload); err != nil {
		// run уже сохранён в БД
		w.logger.Warn("failed to publish run.completed", "run_id", run.ID, "error", err)
	}
}
