// Package metrics records gateway calls as Prometheus metrics. Metrics
// implements llm.Middleware so it can be passed straight to gateway.NewClient.
package metrics

import (
	"context"
	"errors"

	"github.com/AaronAust1n/wps-addin/llm"
	"github.com/AaronAust1n/wps-addin/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wpsai"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the gateway collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Retries  *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of gateway calls by operation, provider and outcome",
		}, []string{"operation", "provider", "outcome"}),

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of failed gateway calls by error kind",
		}, []string{"operation", "kind"}),

		Retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retried attempts after network failures",
		}, []string{"operation"}),

		// Document summaries may take up to three minutes.
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of successful gateway calls in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 180},
		}, []string{"operation"}),
	}
}

// BeforeRequest implements llm.Middleware.
func (m *Metrics) BeforeRequest(_ context.Context, req *llm.Request) (*llm.Request, error) {
	return req, nil
}

// AfterResponse implements llm.Middleware.
func (m *Metrics) AfterResponse(_ context.Context, req *llm.Request, res *llm.Result) (*llm.Result, error) {
	op := req.Operation.String()
	m.Requests.WithLabelValues(op, req.Provider.String(), OutcomeSuccess).Inc()
	m.Latency.WithLabelValues(op).Observe(res.Latency.Seconds())
	if res.Attempts > 1 {
		m.Retries.WithLabelValues(op).Add(float64(res.Attempts - 1))
	}
	return res, nil
}

// OnError implements llm.Middleware. It never replaces the error.
func (m *Metrics) OnError(_ context.Context, req *llm.Request, err *llm.Error) *llm.Error {
	op, provider := "", ""
	if req != nil {
		op, provider = req.Operation.String(), req.Provider.String()
	}
	m.Requests.WithLabelValues(op, provider, OutcomeError).Inc()
	m.Errors.WithLabelValues(op, string(err.Kind)).Inc()

	var attemptsErr *transport.AttemptsError
	if errors.As(err, &attemptsErr) && attemptsErr.Attempts > 1 {
		m.Retries.WithLabelValues(op).Add(float64(attemptsErr.Attempts - 1))
	}
	return nil
}

var _ llm.Middleware = (*Metrics)(nil)
