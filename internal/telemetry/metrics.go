package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики генерации фидов.
var (
	// FeedGenerations — число генераций по статусу (succeeded, failed).
	FeedGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ymlfeed_generations_total",
		Help: "Total feed generations by final status",
	}, []string{"status"})

	// OffersRendered — число предложений во всех сгенерированных фидах.
	OffersRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ymlfeed_offers_rendered_total",
		Help: "Total offers written to generated feeds",
	})

	// GenerationDuration — длительность одной генерации.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ymlfeed_generation_duration_seconds",
		Help:    "Feed generation duration",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	// GenerationRetries — повторные попытки генерации.
	GenerationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ymlfeed_generation_retries_total",
		Help: "Total feed generation retries",
	})

	// RunsScheduled — runs, созданные планировщиком.
	RunsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ymlfeed_runs_scheduled_total",
		Help: "Total runs created by the scheduler",
	})
)

// HTTP метрики API.
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ymlfeed_api_http_requests_total",
		Help: "Total HTTP requests handled by ymlfeed-api",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ymlfeed_api_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
