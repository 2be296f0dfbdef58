package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/ymlfeed/internal/domain"
)

// Ошибки расписаний.
var (
	ErrNoTrigger        = errors.New("schedule has neither cron_expr nor interval_sec")
	ErrNegativeInterval = errors.New("interval_sec must be positive")
	ErrInvalidTimezone  = errors.New("invalid timezone")
)

// cronParser — парсер cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CalculateNextDue вычисляет следующее время выполнения для schedule.
// Для интервалов добавляет IntervalSec к from, cron вычисляется
// в timezone расписания. Результат в UTC.
func CalculateNextDue(sched *domain.Schedule, from time.Time) (time.Time, error) {
	fromInTz := from.In(sched.Location())

	if sched.IsCron() {
		return calculateNextCron(sched.CronExpr, fromInTz)
	}

	if sched.IsInterval() {
		return fromInTz.Add(sched.Interval()).UTC(), nil
	}

	return time.Time{}, ErrNoTrigger
}

// calculateNextCron вычисляет следующее время по cron-выражению.
func calculateNextCron(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	next := schedule.Next(from)
	return next.UTC(), nil // возвращаем в UTC для хранения в БД
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// CalculateInitialNextDue вычисляет первое время выполнения для нового schedule.
// Используется при создании schedule через API.
func CalculateInitialNextDue(sched *domain.Schedule) (time.Time, error) {
	return CalculateNextDue(sched, time.Now())
}

// ValidateSchedule проверяет триггер и timezone расписания.
func ValidateSchedule(sched *domain.Schedule) error {
	if sched.Timezone != "" {
		if _, err := time.LoadLocation(sched.Timezone); err != nil {
			return fmt.Errorf("%w %q", ErrInvalidTimezone, sched.Timezone)
		}
	}
	switch {
	case sched.IsCron():
		return ValidateCronExpr(sched.CronExpr)
	case sched.IntervalSec < 0:
		return ErrNegativeInterval
	case sched.IsInterval():
		return nil
	default:
		return ErrNoTrigger
	}
}
