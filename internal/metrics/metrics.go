package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"productstudio/internal/domain"
)

const namespace = "productstudio"

// Operation labels.
const (
	OpGenerate = "generate"
	OpEdit     = "edit"
	OpShare    = "share"
)

// Metrics holds the collectors exported on /metrics. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	images      *prometheus.CounterVec
	costUSD     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// New registers every collector on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Generation, edit and share calls by outcome.",
		}, []string{"operation", "outcome"}),
		images: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_generated_total",
			Help:      "Images returned to the dashboard.",
		}, []string{"operation"}),
		costUSD: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimated_cost_usd_total",
			Help:      "Sum of estimated generation cost in US dollars.",
		}, []string{"operation"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent waiting on the image model or upload host.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120, 180},
		}, []string{"operation"}),
		tokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Token usage reported by the image model.",
		}, []string{"kind"}),
		uploadBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_upload_bytes_total",
			Help:      "Bytes sent to the public upload host.",
		}),
	}
}

// Generation records one generate or edit call.
func (m *Metrics) Generation(op string, err error, images int, costUSD float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, Outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	m.images.WithLabelValues(op).Add(float64(images))
	if costUSD > 0 {
		m.costUSD.WithLabelValues(op).Add(costUSD)
	}
}

// Tokens records the billed token split of one call.
func (m *Metrics) Tokens(text, image, output int64) {
	if m == nil {
		return
	}
	for kind, n := range map[string]int64{"text_input": text, "image_input": image, "output": output} {
		if n > 0 {
			m.tokens.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// Upload records one share upload.
func (m *Metrics) Upload(err error, size int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(OpShare, Outcome(err)).Inc()
	m.duration.WithLabelValues(OpShare).Observe(elapsed.Seconds())
	if err == nil {
		m.uploadBytes.Add(float64(size))
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCredential):
		return "credential_missing"
	case errors.Is(err, domain.ErrValidation):
		return "invalid_request"
	case errors.Is(err, domain.ErrMissingImageData), errors.Is(err, domain.ErrDecode):
		return "invalid_response"
	case errors.Is(err, domain.ErrUpload):
		return "upload_failed"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}
