package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
	)

	// Feeds
	mux.Handle("GET /api/v1/feeds", chain(http.HandlerFunc(h.ListFeeds)))
	mux.Handle("POST /api/v1/feeds", chain(http.HandlerFunc(h.CreateFeed)))
	mux.Handle("GET /api/v1/feeds/{id}", chain(http.HandlerFunc(h.GetFeed)))
	mux.Handle("PUT /api/v1/feeds/{id}", chain(http.HandlerFunc(h.UpdateFeed)))
	mux.Handle("DELETE /api/v1/feeds/{id}", chain(http.HandlerFunc(h.DeleteFeed)))
	mux.Handle("GET /api/v1/feeds/{id}/preview", chain(http.HandlerFunc(h.PreviewFeed)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("POST /api/v1/feeds/{id}/runs", chain(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("POST /api/v1/runs/{id}/cancel", chain(http.HandlerFunc(h.CancelRun)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/feeds/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}", chain(http.HandlerFunc(h.UpdateSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))
}
