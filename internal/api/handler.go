package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/feed"
	"github.com/shaiso/ymlfeed/internal/repo"
)

// FeedStore — хранилище определений фидов.
type FeedStore interface {
	Create(ctx context.Context, f *domain.Feed) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Feed, error)
	List(ctx context.Context, limit, offset int) ([]domain.Feed, error)
	Update(ctx context.Context, f *domain.Feed) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunStore — хранилище генераций.
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	GetByIdempotencyKey(ctx context.Context, feedID uuid.UUID, key string) (*domain.Run, error)
	List(ctx context.Context, filter repo.RunFilter) ([]domain.Run, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// ScheduleStore — хранилище расписаний.
type ScheduleStore interface {
	Create(ctx context.Context, s *domain.Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
	List(ctx context.Context, filter repo.ScheduleFilter) ([]domain.Schedule, error)
	Update(ctx context.Context, s *domain.Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

// Previewer строит фид без записи.
type Previewer interface {
	Preview(ctx context.Context, f *domain.Feed) (*feed.Result, error)
}

// Notifier сообщает worker о новом run.
type Notifier interface {
	PublishRunPending(ctx context.Context, runID, feedID uuid.UUID) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	feeds     FeedStore
	runs      RunStore
	schedules ScheduleStore
	previewer Previewer
	notifier  Notifier
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Feeds     FeedStore
	Runs      RunStore
	Schedules ScheduleStore

	// Previewer — опционально; без него /preview отвечает 503.
	Previewer Previewer

	// Notifier — опционально; без него worker подберёт run через polling.
	Notifier Notifier

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		feeds:     cfg.Feeds,
		runs:      cfg.Runs,
		schedules: cfg.Schedules,
		previewer: cfg.Previewer,
		notifier:  cfg.Notifier,
		logger:    logger,
	}
}

// Значения пагинации по умолчанию.
const (
	defaultLimit = 50
	maxLimit     = 500
)

// pagination читает limit/offset из query. Некорректные значения
// заменяются значениями по умолчанию.
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return n
}

// decodeBody декодирует JSON тело запроса. Пустое тело допустимо,
// если allowEmpty.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
