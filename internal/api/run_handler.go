package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ymlfeed/internal/domain"
	"github.com/shaiso/ymlfeed/internal/repo"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?feed_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{}

	if feedIDStr := r.URL.Query().Get("feed_id"); feedIDStr != "" {
		feedID, err := uuid.Parse(feedIDStr)
		if err != nil {
			BadRequest(w, "invalid feed_id")
			return
		}
		filter.FeedID = &feedID
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status, ok := domain.ParseRunStatus(s)
		if !ok {
			BadRequest(w, "invalid status")
			return
		}
		filter.Status = status
	}

	filter.Limit, filter.Offset = pagination(r)

	runs, err := h.runs.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// CreateRun создаёт ручной запуск генерации фида.
// POST /api/v1/feeds/{id}/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := decodeBody(r, &req, true); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	f, ok := h.loadFeed(w, r)
	if !ok {
		return
	}

	if req.IdempotencyKey != "" {
		existing, err := h.runs.GetByIdempotencyKey(r.Context(), f.ID, req.IdempotencyKey)
		if err == nil {
			Success(w, RunFromDomain(*existing))
			return
		}
		if !errors.Is(err, repo.ErrNotFound) {
			InternalError(w, h.logger, err)
			return
		}
	}

	run := &domain.Run{
		ID:             uuid.New(),
		FeedID:         f.ID,
		Status:         domain.RunStatusPending,
		Trigger:        domain.RunTriggerManual,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now(),
	}

	if err := h.runs.Create(r.Context(), run); err != nil {
		// Параллельный запрос с тем же ключом успел раньше.
		if errors.Is(err, repo.ErrAlreadyExists) && req.IdempotencyKey != "" {
			existing, getErr := h.runs.GetByIdempotencyKey(r.Context(), f.ID, req.IdempotencyKey)
			if getErr == nil {
				Success(w, RunFromDomain(*existing))
				return
			}
		}
		HandleRepoError(w, h.logger, err, "")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.PublishRunPending(r.Context(), run.ID, run.FeedID); err != nil {
			h.logger.Warn("failed to publish run.pending", "run_id", run.ID, "error", err)
		}
	}

	Created(w, RunFromDomain(*run))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// CancelRun отменяет run, который ещё не начал выполняться.
// POST /api/v1/runs/{id}/cancel
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	if err := h.runs.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrInvalidState) {
			InvalidState(w, "run is not pending")
			return
		}
		HandleRepoError(w, h.logger, err, "run not found")
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}
