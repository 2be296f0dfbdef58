package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
)

// Feed DTOs

// CreateFeedRequest — запрос на создание фида.
// Отсутствующие параметры берутся из domain.DefaultFeedParams.
type CreateFeedRequest struct {
	Name   string            `json:"name"`
	Params domain.FeedParams `json:"params"`
}

// newCreateFeedRequest возвращает запрос с параметрами по умолчанию,
// поверх которых декодируется тело.
func newCreateFeedRequest() CreateFeedRequest {
	return CreateFeedRequest{Params: domain.DefaultFeedParams()}
}

// UpdateFeedRequest — запрос на обновление фида.
// Params накладывается на текущие параметры: перечисленные поля заменяются,
// остальные сохраняются.
type UpdateFeedRequest struct {
	Name   *string         `json:"name,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// FeedResponse — ответ с фидом.
type FeedResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Params    domain.FeedParams `json:"params"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FeedFromDomain конвертирует domain.Feed в FeedResponse.
func FeedFromDomain(f domain.Feed) FeedResponse {
	return FeedResponse{
		ID:        f.ID,
		Name:      f.Name,
		Params:    f.Params,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Run DTOs

// CreateRunRequest — запрос на ручной запуск генерации. Тело опционально.
type CreateRunRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID             uuid.UUID  `json:"id"`
	FeedID         uuid.UUID  `json:"feed_id"`
	Status         string     `json:"status"`
	Trigger        string     `json:"trigger"`
	Attempt        int        `json:"attempt"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	DurationMs     int64      `json:"duration_ms,omitempty"`
	Error          string     `json:"error,omitempty"`
	OffersCount    int        `json:"offers_count"`
	Location       string     `json:"location,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:             r.ID,
		FeedID:         r.FeedID,
		Status:         string(r.Status),
		Trigger:        string(r.Trigger),
		Attempt:        r.Attempt,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		DurationMs:     r.Duration().Milliseconds(),
		Error:          r.Error,
		OffersCount:    r.OffersCount,
		Location:       r.Location,
		IdempotencyKey: r.IdempotencyKey,
		CreatedAt:      r.CreatedAt,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID          uuid.UUID  `json:"id"`
	FeedID      uuid.UUID  `json:"feed_id"`
	Name        string     `json:"name"`
	CronExpr    string     `json:"cron_expr,omitempty"`
	IntervalSec int        `json:"interval_sec,omitempty"`
	Timezone    string     `json:"timezone"`
	Enabled     bool       `json:"enabled"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastRunID   *uuid.UUID `json:"last_run_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:          s.ID,
		FeedID:      s.FeedID,
		Name:        s.Name,
		CronExpr:    s.CronExpr,
		IntervalSec: s.IntervalSec,
		Timezone:    s.Timezone,
		Enabled:     s.Enabled,
		NextDueAt:   s.NextDueAt,
		LastRunAt:   s.LastRunAt,
		LastRunID:   s.LastRunID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
