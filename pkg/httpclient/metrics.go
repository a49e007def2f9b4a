package httpclient

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// RequestsMetricName is the fully qualified name of the request counter.
	RequestsMetricName = "postboard_http_requests_total"

	outcomeSuccess = "success"
)

// Metrics records request outcomes and latency.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg. Collectors already present on
// reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and outcome.",
	}, []string{"method", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "postboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency including body normalization.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	var err error
	if requests, err = registerOrReuse(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}

	return &Metrics{requests: requests, duration: duration}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(method Method, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(method), outcomeLabel(err)).Inc()
	m.duration.WithLabelValues(string(method)).Observe(elapsed.Seconds())
}

func outcomeLabel(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return KindTransport.String()
}
