package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/ymlfeed/internal/domain"
)

func TestCalculateNextDue(t *testing.T) {
	from := time.Date(2026, 3, 5, 10, 15, 0, 0, time.UTC)

	tests := []struct {
		name  string
		sched domain.Schedule
		want  time.Time
	}{
		{
			name:  "daily cron UTC",
			sched: domain.Schedule{CronExpr: "0 3 * * *", Timezone: "UTC"},
			want:  time.Date(2026, 3, 6, 3, 0, 0, 0, time.UTC),
		},
		{
			name:  "daily cron Moscow",
			sched: domain.Schedule{CronExpr: "0 3 * * *", Timezone: "Europe/Moscow"},
			// 03:00 MSK = 00:00 UTC
			want: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "descriptor",
			sched: domain.Schedule{CronExpr: "@hourly", Timezone: "UTC"},
			want:  time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC),
		},
		{
			name:  "interval",
			sched: domain.Schedule{IntervalSec: 3600, Timezone: "UTC"},
			want:  time.Date(2026, 3, 5, 11, 15, 0, 0, time.UTC),
		},
		{
			name:  "invalid timezone falls back to UTC",
			sched: domain.Schedule{CronExpr: "30 10 * * *", Timezone: "Nowhere/City"},
			want:  time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateNextDue(&tt.sched, from)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC result, got %v", got.Location())
			}
		})
	}
}

func TestCalculateNextDue_Errors(t *testing.T) {
	from := time.Now()

	if _, err := CalculateNextDue(&domain.Schedule{}, from); !errors.Is(err, ErrNoTrigger) {
		t.Errorf("expected ErrNoTrigger, got %v", err)
	}
	if _, err := CalculateNextDue(&domain.Schedule{CronExpr: "not a cron"}, from); err == nil {
		t.Error("expected error for invalid cron")
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		sched   domain.Schedule
		wantErr error
		ok      bool
	}{
		{name: "cron", sched: domain.Schedule{CronExpr: "*/15 * * * *"}, ok: true},
		{name: "interval", sched: domain.Schedule{IntervalSec: 60, Timezone: "Europe/Moscow"}, ok: true},
		{name: "no trigger", sched: domain.Schedule{}, wantErr: ErrNoTrigger},
		{name: "negative interval", sched: domain.Schedule{IntervalSec: -5}, wantErr: ErrNegativeInterval},
		{name: "bad timezone", sched: domain.Schedule{IntervalSec: 60, Timezone: "Mars/Base"}, wantErr: ErrInvalidTimezone},
		{name: "bad cron", sched: domain.Schedule{CronExpr: "61 * * * *"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(&tt.sched)
			switch {
			case tt.ok:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			default:
				if err == nil {
					t.Error("expected error")
				}
			}
		})
	}
}
