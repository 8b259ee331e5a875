// Package metrics instruments the tick loop with the counters named in
// SPEC_FULL.md §B, grounded on the teacher's own gauge-registration
// idiom (cli/server/metrics.go's prometheus.NewGaugeVec/MustRegister),
// generalized from one static version gauge to the tick/eval/error/
// builtin counters this runtime actually produces.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds every metric this runtime reports. It is created
// once per process; Runtime.Tick touches it on every iteration.
type Collectors struct {
	TicksTotal       *prometheus.CounterVec
	EvalDuration     prometheus.Histogram
	ErrorsTotal      *prometheus.CounterVec
	BuiltinCallsTotal *prometheus.CounterVec
}

// New registers the namespaced collectors against reg. Pass
// prometheus.NewRegistry() in tests to avoid the global default
// registry's "duplicate registration" panic across test runs.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		TicksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apica",
			Name:      "ticks_total",
			Help:      "Number of Runtime.Tick calls, by ApicaMode.",
		}, []string{"mode"}),
		EvalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apica",
			Name:      "eval_duration_seconds",
			Help:      "Wall-clock duration of a single top-level Evaluate call.",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apica",
			Name:      "errors_total",
			Help:      "Number of Error Elements that reached the top-level evaluate, by ErrorKind.",
		}, []string{"kind"}),
		BuiltinCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apica",
			Name:      "builtin_calls_total",
			Help:      "Number of builtin func-calls dispatched, by builtin name.",
		}, []string{"name"}),
	}
}

// ObserveEval records one Evaluate call's duration.
func (c *Collectors) ObserveEval(d time.Duration) {
	c.EvalDuration.Observe(d.Seconds())
}

// Server serves the registered collectors over net/http, per
// SPEC_FULL.md's "stdlib is the right tool for an HTTP listener; no
// example repo ships its own HTTP server framework."
type Server struct {
	httpServer *http.Server
}

// NewServer builds (but does not start) an HTTP server exposing
// /metrics for reg at addr.
func NewServer(addr string, reg *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the listener in the background. The returned error
// channel receives at most one value: the listener's terminal error,
// or nil after a clean Shutdown.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	return errCh
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
