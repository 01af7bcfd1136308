package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FieldUpdates counts applied field edits by form and field.
	FieldUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_field_updates_total",
			Help: "Field edits applied to campaign drafts",
		},
		[]string{"form", "field"}, // campaign or voucher
	)

	// Saves counts campaign saves.
	Saves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_campaign_saves_total",
		Help: "Campaign save actions",
	})

	// SaveSinkErrors counts saver failures. Saves still succeed from the caller's view.
	SaveSinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_save_sink_errors_total",
			Help: "Failures emitting a saved campaign to a sink",
		},
		[]string{"sink"},
	)

	// LogoUploads counts logo selections by outcome.
	LogoUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_logo_uploads_total",
			Help: "Logo selections by outcome",
		},
		[]string{"result"}, // accepted, rejected or error
	)

	// ActiveSessions tracks live studio sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studio_active_sessions",
		Help: "Studio sessions currently held in memory",
	})

	// PreviewRenderDuration tracks voucher preview rendering latency.
	PreviewRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "studio_preview_render_duration_seconds",
		Help: "Duration of voucher preview rendering in seconds",
		Buckets: []float64{
			0.0001, // 100µs
			0.0005, // 500µs
			0.001,  // 1ms
			0.005,  // 5ms
			0.01,   // 10ms
			0.05,   // 50ms
		},
	})

	// RequestDuration tracks HTTP latency by route and status.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordLogoUpload records a logo selection outcome.
func RecordLogoUpload(result string) {
	LogoUploads.WithLabelValues(result).Inc()
}

// RecordFieldUpdate records one applied field edit.
func RecordFieldUpdate(form, field string) {
	FieldUpdates.WithLabelValues(form, field).Inc()
}
