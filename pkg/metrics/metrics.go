package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Buckets tuned for a mix of fast local handlers and 30s-capped webhook calls
	apiBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: apiBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Outbound webhook (n8n) metrics
	WebhookRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_client_operation_duration_seconds",
			Help:    "Automation webhook call duration in seconds",
			Buckets: apiBuckets,
		},
		[]string{"operation", "status"},
	)

	WebhookRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_client_operation_total",
			Help: "Total number of automation webhook calls",
		},
		[]string{"operation", "status"},
	)

	// Customer store (Airtable) metrics
	CustomerStoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "customer_store_operation_duration_seconds",
			Help:    "Customer store operation duration in seconds",
			Buckets: apiBuckets,
		},
		[]string{"operation", "status"},
	)

	CustomerStoreRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_store_operation_total",
			Help: "Total number of customer store operations",
		},
		[]string{"operation", "status"},
	)

	// Business metrics
	ContactFormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tesseract_contact_form_submissions_total",
			Help: "Total number of contact form submissions",
		},
		[]string{"status"},
	)

	BookingCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tesseract_booking_creations_total",
			Help: "Total number of booking creation attempts",
		},
		[]string{"status"},
	)

	AvailabilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tesseract_availability_checks_total",
			Help: "Total number of availability checks",
		},
		[]string{"status"}, // "upstream" or "fallback"
	)

	ChatRelayTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tesseract_chat_relay_total",
			Help: "Total number of chat messages relayed",
		},
		[]string{"status"},
	)

	CustomerSignIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tesseract_customer_sign_ins_total",
			Help: "Total number of OAuth sign-ins",
		},
		[]string{"status"},
	)

	// Email queue metrics
	EmailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tesseract_email_queue_depth",
			Help: "Number of email jobs waiting in the queue",
		},
	)

	EmailSendTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tesseract_email_send_total",
			Help: "Total number of email send attempts",
		},
		[]string{"status"},
	)

	// Infrastructure metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
