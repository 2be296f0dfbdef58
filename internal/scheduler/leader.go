package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Locker — распределённая блокировка лидера.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Ticker — то, что выполняет лидер на каждом тике.
type Ticker interface {
	Tick(ctx context.Context) (TickResult, error)
}

// Loop вызывает Tick, пока экземпляр удерживает блокировку.
type Loop struct {
	ticker   Ticker
	locker   Locker
	interval time.Duration
	logger   *slog.Logger

	isLeader bool
}

// NewLoop создаёт цикл планировщика.
func NewLoop(ticker Ticker, locker Locker, interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	return &Loop{
		ticker:   ticker,
		locker:   locker,
		interval: interval,
		logger:   logger,
	}
}

// Run выполняет цикл до отмены ctx. Блокировка освобождается при выходе.
func (l *Loop) Run(ctx context.Context) error {
	tk := time.NewTicker(l.interval)
	defer tk.Stop()

	defer func() {
		if l.isLeader {
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.locker.Unlock(unlockCtx); err != nil {
				l.logger.Warn("failed to release leader lock", "error", err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			l.step(ctx)
		}
	}
}

// step — один тик: стать лидером (или подтвердить лидерство) и обработать расписания.
func (l *Loop) step(ctx context.Context) {
	if !l.isLeader {
		ok, err := l.locker.TryLock(ctx)
		if err != nil {
			l.logger.Warn("leader lock failed", "error", err)
			return
		}
		if !ok {
			return
		}
		l.isLeader = true
		l.logger.Info("became scheduler leader")
	}

	if _, err := l.ticker.Tick(ctx); err != nil {
		l.logger.Error("scheduler tick failed", "error", err)
	}
}

// IsLeader сообщает, удерживает ли цикл блокировку.
func (l *Loop) IsLeader() bool {
	return l.isLeader
}
