package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeLocker struct {
	results  []bool
	err      error
	calls    int
	unlocked bool
}

func (f *fakeLocker) TryLock(ctx context.Context) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if len(f.results) == 0 {
		return false, nil
	}
	ok := f.results[0]
	f.results = f.results[1:]
	return ok, nil
}

func (f *fakeLocker) Unlock(ctx context.Context) error {
	f.unlocked = true
	return nil
}

type countingTicker struct {
	ticks int
}

func (c *countingTicker) Tick(ctx context.Context) (TickResult, error) {
	c.ticks++
	return TickResult{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoop_TicksOnlyAsLeader(t *testing.T) {
	locker := &fakeLocker{results: []bool{false, true}}
	ticker := &countingTicker{}
	loop := NewLoop(ticker, locker, time.Second, discardLogger())
	ctx := context.Background()

	loop.step(ctx)
	if ticker.ticks != 0 || loop.IsLeader() {
		t.Fatalf("should not tick without lock")
	}

	loop.step(ctx)
	loop.step(ctx)
	if ticker.ticks != 2 {
		t.Errorf("expected 2 ticks as leader, got %d", ticker.ticks)
	}
	// после захвата блокировка не запрашивается повторно
	if locker.calls != 2 {
		t.Errorf("expected 2 lock attempts, got %d", locker.calls)
	}
}

func TestLoop_LockError(t *testing.T) {
	locker := &fakeLocker{err: errors.New("db down")}
	ticker := &countingTicker{}
	loop := NewLoop(ticker, locker, time.Second, discardLogger())

	loop.step(context.Background())
	if ticker.ticks != 0 || loop.IsLeader() {
		t.Error("should not tick when lock fails")
	}
}

func TestLoop_RunReleasesLock(t *testing.T) {
	locker := &fakeLocker{results: []bool{true}}
	ticker := &countingTicker{}
	loop := NewLoop(ticker, locker, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if ticker.ticks == 0 {
		t.Error("expected at least one tick")
	}
	if !locker.unlocked {
		t.Error("expected lock to be released on exit")
	}
}
