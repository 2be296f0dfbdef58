package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schedule — когда перестраивать фид.
//
// Триггер задаётся cron-выражением ("0 3 * * *", "@daily") в часовом поясе
// расписания либо интервалом в секундах. Если заданы оба, действует cron.
// Каждое срабатывание создаёт один run с ключом RunKey, поэтому повторный
// тик по тому же NextDueAt не порождает второй файл.
type Schedule struct {
	ID     uuid.UUID `json:"id"`
	FeedID uuid.UUID `json:"feed_id"`
	Name   string    `json:"name,omitempty"`

	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`

	// Timezone — IANA-имя пояса для cron; пустое или неизвестное = UTC.
	Timezone string `json:"timezone"`

	Enabled bool `json:"enabled"`

	NextDueAt *time.Time `json:"next_due_at,omitempty"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastRunID *uuid.UUID `json:"last_run_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *Schedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalSec > 0
}

// Interval — интервал между генерациями; 0 для cron-расписаний.
func (s *Schedule) Interval() time.Duration {
	if !s.IsInterval() {
		return 0
	}
	return time.Duration(s.IntervalSec) * time.Second
}

// Location возвращает часовой пояс расписания.
func (s *Schedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDue проверяет, пора ли запускать.
func (s *Schedule) IsDue(now time.Time) bool {
	if !s.Enabled || s.NextDueAt == nil {
		return false
	}
	return !now.Before(*s.NextDueAt)
}

// DueAt — плановое время текущего срабатывания: NextDueAt или now,
// если расписание ещё не планировалось.
func (s *Schedule) DueAt(now time.Time) time.Time {
	if s.NextDueAt != nil {
		return *s.NextDueAt
	}
	return now
}

// RunKey — ключ идемпотентности run для срабатывания в due.
func (s *Schedule) RunKey(due time.Time) string {
	return fmt.Sprintf("%s_%d", s.ID, due.Unix())
}

// RecordRun записывает информацию о запуске.
func (s *Schedule) RecordRun(runID uuid.UUID, nextDue time.Time) {
	now := time.Now()
	s.LastRunAt = &now
	s.LastRunID = &runID
	s.NextDueAt = &nextDue
	s.UpdatedAt = now
}
