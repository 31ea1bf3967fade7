// Package metrics exposes game and HTTP counters to Prometheus.
//
// Metrics:
//   - games_started_total                       counter
//   - games_finished_total{status}              counter (won/lost)
//   - selections_total{outcome}                 counter
//   - eliminations_total                        counter
//   - sessions_active                           gauge
//   - solves_total{result}                      counter (solvable/unsolvable/exhausted)
//   - solve_nodes                               histogram
//   - http_request_duration_seconds{method,path,status} histogram
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"svw.info/sheep/internal/domain"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	GamesStarted  prometheus.Counter
	GamesFinished *prometheus.CounterVec
	Selections    *prometheus.CounterVec
	Eliminations  prometheus.Counter
	Active        prometheus.Gauge
	Solves        *prometheus.CounterVec
	SolveNodes    prometheus.Histogram
	ReqDuration   *prometheus.HistogramVec
}

// New creates the collectors under namespace and registers them with reg.
// A nil reg uses a fresh registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games dealt, including restarts.",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached a terminal status.",
		}, []string{"status"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Tile selections by outcome.",
		}, []string{"outcome"}),
		Eliminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eliminations_total",
			Help:      "Triples cleared from staging.",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Solver runs by result.",
		}, []string{"result"}),
		SolveNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_nodes",
			Help:      "Search nodes visited per solver run.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		ReqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(m.GamesStarted, m.GamesFinished, m.Selections, m.Eliminations, m.Active, m.Solves, m.SolveNodes, m.ReqDuration)
	return m
}

// ObserveSelection records one selection and, when it ended the game, the
// final status.
func (m *Metrics) ObserveSelection(out domain.Outcome, after domain.Status) {
	if m == nil {
		return
	}
	m.Selections.WithLabelValues(out.String()).Inc()
	if out == domain.OutcomeEliminated {
		m.Eliminations.Inc()
	}
	if out != domain.OutcomeIgnored && after.Terminal() {
		m.GamesFinished.WithLabelValues(after.String()).Inc()
	}
}

// ObserveStart records a dealt board. A board that is already won or lost
// when dealt also counts as finished.
func (m *Metrics) ObserveStart(st domain.Status) {
	if m == nil {
		return
	}
	m.GamesStarted.Inc()
	if st.Terminal() {
		m.GamesFinished.WithLabelValues(st.String()).Inc()
	}
}

func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.Active.Set(float64(n))
}

// ObserveSolve records one solver run.
func (m *Metrics) ObserveSolve(res domain.Solution) {
	if m == nil {
		return
	}
	result := "unsolvable"
	switch {
	case res.Exhausted:
		result = "exhausted"
	case res.Solvable:
		result = "solvable"
	}
	m.Solves.WithLabelValues(result).Inc()
	m.SolveNodes.Observe(float64(res.Nodes))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.ReqDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
