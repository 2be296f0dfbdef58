package worker

import (
	"context"
	"errors"
	"time"

	"github.com/shaiso/ymlfeed/internal/feed"
	"github.com/shaiso/ymlfeed/internal/storage"
)

// Стратегии backoff.
const (
	BackoffExponential = "exponential"
	BackoffFixed       = "fixed"
)

// RetryPolicy — политика повторных попыток генерации.
type RetryPolicy struct {
	// MaxAttempts — всего попыток, включая первую.
	MaxAttempts int

	// InitialDelay — задержка перед второй попыткой.
	InitialDelay time.Duration

	// MaxDelay — верхняя граница задержки.
	MaxDelay time.Duration

	// Backoff — "exponential" (по умолчанию) или "fixed".
	Backoff string
}

// DefaultRetryPolicy — 3 попытки, 1s → 2s, не больше 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Backoff:      BackoffExponential,
	}
}

// calculateBackoff вычисляет задержку после попытки attempt (начиная с 1).
func calculateBackoff(attempt int, policy RetryPolicy) time.Duration {
	initialDelay := policy.InitialDelay
	if initialDelay <= 0 {
		initialDelay = time.Second
	}

	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	delay := initialDelay
	if policy.Backoff != BackoffFixed {
		// delay = initialDelay * 2^(attempt-1)
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay >= maxDelay {
				break
			}
		}
	}

	return min(delay, maxDelay)
}

// isRetriable определяет, имеет ли смысл повторять генерацию.
//
// Ошибки параметров фида и данных не исчезнут при повторе, ошибки
// БД и хранилища — могут.
func isRetriable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, feed.ErrInvalidParams),
		errors.Is(err, feed.ErrPrimaryCategory),
		errors.Is(err, feed.ErrRender),
		errors.Is(err, storage.ErrEmptyBody),
		errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, ErrFeedNotFound):
		return false
	default:
		return true
	}
}
