package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunTrigger — источник запуска генерации.
type RunTrigger string

const (
	RunTriggerManual   RunTrigger = "manual"
	RunTriggerSchedule RunTrigger = "schedule"
)

// Run — одна генерация фида.
//
// Run создаётся когда:
// - Пользователь запускает генерацию вручную (через API/CLI)
// - Scheduler создаёт run по расписанию
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// FeedID — фид, который генерируется.
	FeedID uuid.UUID `json:"feed_id"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Trigger — кто инициировал запуск.
	Trigger RunTrigger `json:"trigger"`

	// Attempt — номер попытки генерации (начиная с 1).
	Attempt int `json:"attempt"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`

	// OffersCount — число offers в записанном фиде.
	OffersCount int `json:"offers_count"`

	// Location — куда записан фид (путь к файлу или gs://bucket/object).
	Location string `json:"location,omitempty"`

	// IdempotencyKey — для scheduled runs: "{schedule_id}_{next_due_at}".
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
	r.Attempt++
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded(offers int, location string) {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	r.OffersCount = offers
	r.Location = location
	r.Error = ""
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}

// MarkCancelled переводит run в статус CANCELLED.
func (r *Run) MarkCancelled() {
	now := time.Now()
	r.Status = RunStatusCancelled
	r.FinishedAt = &now
}

// CanRetry проверяет, можно ли сделать ещё одну попытку.
func (r *Run) CanRetry(maxAttempts int) bool {
	return r.Attempt < maxAttempts
}
