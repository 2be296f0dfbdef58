package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/feed"
	"github.com/shaiso/ymlfeed/internal/repo"
	"github.com/shaiso/ymlfeed/internal/telemetry"
)

// ListFeeds возвращает список фидов.
// GET /api/v1/feeds?limit=...&offset=...
func (h *Handler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	feeds, err := h.feeds.List(r.Context(), limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FeedResponse, len(feeds))
	for i, f := range feeds {
		result[i] = FeedFromDomain(f)
	}

	List(w, result, len(result))
}

// CreateFeed создаёт новый фид.
// POST /api/v1/feeds
func (h *Handler) CreateFeed(w http.ResponseWriter, r *http.Request) {
	req := newCreateFeedRequest()
	if err := decodeBody(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if err := req.Params.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	now := time.Now()
	f := &domain.Feed{
		ID:        uuid.New(),
		Name:      req.Name,
		Params:    req.Params,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.feeds.Create(r.Context(), f); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			Conflict(w, "feed with this name already exists")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, FeedFromDomain(*f))
}

// GetFeed возвращает фид по ID.
// GET /api/v1/feeds/{id}
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	f, ok := h.loadFeed(w, r)
	if !ok {
		return
	}
	Success(w, FeedFromDomain(*f))
}

// UpdateFeed обновляет имя и параметры фида.
// PUT /api/v1/feeds/{id}
func (h *Handler) UpdateFeed(w http.ResponseWriter, r *http.Request) {
	var req UpdateFeedRequest
	if err := decodeBody(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	f, ok := h.loadFeed(w, r)
	if !ok {
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			BadRequest(w, "name must not be empty")
			return
		}
		f.Name = *req.Name
	}
	if len(req.Params) > 0 {
		// Поверх текущих параметров: поля, которых нет в запросе, сохраняются.
		if err := json.Unmarshal(req.Params, &f.Params); err != nil {
			BadRequest(w, "invalid params")
			return
		}
	}
	if err := f.Params.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	f.UpdatedAt = time.Now()
	if err := h.feeds.Update(r.Context(), f); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			Conflict(w, "feed with this name already exists")
			return
		}
		HandleRepoError(w, h.logger, err, "feed not found")
		return
	}

	Success(w, FeedFromDomain(*f))
}

// DeleteFeed удаляет фид вместе с его расписаниями и runs.
// DELETE /api/v1/feeds/{id}
func (h *Handler) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid feed id")
		return
	}

	if HandleRepoError(w, h.logger, h.feeds.Delete(r.Context(), id), "feed not found") {
		return
	}

	NoContent(w)
}

// PreviewFeed строит YML документ фида без записи в хранилище.
// GET /api/v1/feeds/{id}/preview
func (h *Handler) PreviewFeed(w http.ResponseWriter, r *http.Request) {
	if h.previewer == nil {
		Unavailable(w, "preview is not configured")
		return
	}

	f, ok := h.loadFeed(w, r)
	if !ok {
		return
	}

	logger := telemetry.WithFeedID(h.logger, f.ID.String())
	ctx := telemetry.WithLogger(r.Context(), logger)
	result, err := h.previewer.Preview(ctx, f)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrInvalidParams), errors.Is(err, feed.ErrPrimaryCategory):
			InvalidState(w, err.Error())
		default:
			InternalError(w, logger, err)
		}
		return
	}

	w.Header().Set("X-Offers-Count", strconv.Itoa(result.OffersCount))
	XML(w, result.Body)
}

// loadFeed читает {id} из пути и загружает фид.
// При ошибке ответ уже отправлен и возвращается false.
func (h *Handler) loadFeed(w http.ResponseWriter, r *http.Request) (*domain.Feed, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid feed id")
		return nil, false
	}

	f, err := h.feeds.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "feed not found") {
		return nil, false
	}
	return f, true
}
