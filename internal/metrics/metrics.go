// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector. Create one per process with New.
type Metrics struct {
	rpcRequests        *prometheus.CounterVec
	rpcDuration        *prometheus.HistogramVec
	simplifyRuns       *prometheus.CounterVec
	settlementsCreated prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ninjatab",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ninjatab",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		simplifyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ninjatab",
			Name:      "simplify_runs_total",
			Help:      "Tab simplifications by result.",
		}, []string{"result"}),
		settlementsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ninjatab",
			Name:      "settlements_created_total",
			Help:      "Settlement transactions persisted by simplification.",
		}),
	}
	reg.MustRegister(m.rpcRequests, m.rpcDuration, m.simplifyRuns, m.settlementsCreated)
	return m
}

// ObserveSimplify records one simplification. result is a short label such as
// "ok", "no_bills" or "rate_not_found".
func (m *Metrics) ObserveSimplify(result string, settlements int) {
	if m == nil {
		return
	}
	m.simplifyRuns.WithLabelValues(result).Inc()
	m.settlementsCreated.Add(float64(settlements))
}

// Interceptor returns a Connect interceptor that counts and times every unary RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
