package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solicitudes"

var (
	documentsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_generated_total",
			Help:      "Total PDF reports by result (success, error)",
		},
		[]string{"result"},
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_generation_duration_seconds",
			Help:      "Duration of PDF report generation",
			Buckets:   prometheus.DefBuckets,
		},
	)

	documentPages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_pages",
			Help:      "Pages per generated report",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	imagesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_skipped_total",
			Help:      "Images left out of a report because they could not be fetched or decoded",
		},
	)

	storeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_requests_total",
			Help:      "Record store requests by operation and result",
		},
		[]string{"op", "result"},
	)

	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Session events (signed_in, signed_out, rejected)",
		},
		[]string{"event"},
	)

	registerOnce sync.Once
)

// Init registers collectors with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(documentsGenerated, generationDuration, documentPages, imagesSkipped, storeRequests, authEvents)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

// ObserveGeneration records one report generation. pages is ignored on error.
func ObserveGeneration(result string, dur time.Duration, pages int) {
	documentsGenerated.WithLabelValues(result).Inc()
	generationDuration.Observe(dur.Seconds())
	if result == ResultSuccess {
		documentPages.Observe(float64(pages))
	}
}

func IncImageSkipped()               { imagesSkipped.Inc() }
func ObserveStore(op, result string) { storeRequests.WithLabelValues(op, result).Inc() }
func IncAuth(event string)           { authEvents.WithLabelValues(event).Inc() }

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
