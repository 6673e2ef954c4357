// Package metrics holds the Prometheus collectors for pocketvibe.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketvibe_generations_total",
		Help: "Site generation tasks by outcome",
	}, []string{"kind", "outcome"}) // kind=site|css, outcome=success|error|timeout

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pocketvibe_generation_duration_seconds",
		Help:    "Wall-clock duration of generation tasks",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
	}, []string{"kind"})

	llmTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketvibe_llm_tokens_total",
		Help: "LLM tokens consumed",
	}, []string{"direction"}) // direction=input|output

	pushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketvibe_push_deliveries_total",
		Help: "Web Push delivery attempts by outcome",
	}, []string{"outcome"}) // outcome=sent|expired|failed

	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketvibe_cache_ops_total",
		Help: "Response cache lookups by result",
	}, []string{"result"}) // result=hit|miss

	wsSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketvibe_ws_subscribers",
		Help: "Currently connected WebSocket status subscribers",
	})
)

// RecordGeneration records a finished generation task.
func RecordGeneration(kind, outcome string, elapsed time.Duration) {
	generationsTotal.WithLabelValues(kind, outcome).Inc()
	generationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordLLMUsage records token usage from a completion response.
func RecordLLMUsage(inputTokens, outputTokens int) {
	llmTokens.WithLabelValues("input").Add(float64(inputTokens))
	llmTokens.WithLabelValues("output").Add(float64(outputTokens))
}

// RecordPushDelivery records a Web Push delivery attempt.
func RecordPushDelivery(outcome string) {
	pushDeliveries.WithLabelValues(outcome).Inc()
}

// RecordCacheHit and RecordCacheMiss track response cache effectiveness.
func RecordCacheHit()  { cacheOps.WithLabelValues("hit").Inc() }
func RecordCacheMiss() { cacheOps.WithLabelValues("miss").Inc() }

// WSSubscriberConnected and WSSubscriberDisconnected track the subscriber gauge.
func WSSubscriberConnected()    { wsSubscribers.Inc() }
func WSSubscriberDisconnected() { wsSubscribers.Dec() }
