package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "computer_nlu_request_duration_seconds",
			Help:    "NLU request processing duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "computer_nlu_requests_total",
			Help: "Total number of NLU requests processed",
		},
		[]string{"status"},
	)

	IntentCertainty = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "computer_nlu_intent_certainty",
			Help:    "Certainty scores of resolved intents",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	FallbackAnswersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "computer_nlu_fallback_answers_total",
			Help: "Total number of replies served from the fallback tier",
		},
	)

	ModelErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "computer_nlu_model_errors_total",
			Help: "Total number of failed classifier invocations",
		},
	)

	ChatLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "computer_chat_reply_length_chars",
			Help:    "Length of generated chat continuations in characters",
			Buckets: []float64{0, 10, 25, 50, 75, 98},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "computer_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "computer_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RequestTotal)
	prometheus.MustRegister(IntentCertainty)
	prometheus.MustRegister(FallbackAnswersTotal)
	prometheus.MustRegister(ModelErrors)
	prometheus.MustRegister(ChatLength)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
