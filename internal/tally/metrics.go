package tally

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colonyops/tally/internal/core/voice"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	sessions     *prometheus.CounterVec
	oracle       *prometheus.HistogramVec
	todosCreated prometheus.Counter
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tally",
			Name:      "voice_sessions_total",
			Help:      "Voice sessions that reached a terminal state, by outcome.",
		}, []string{"outcome", "kind"}),
		oracle: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tally",
			Name:      "oracle_request_duration_seconds",
			Help:      "Latency of oracle requests by call site and result.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"call", "result"}),
		todosCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tally",
			Name:      "todos_created_total",
			Help:      "Todos written by confirmed voice commands.",
		}),
	}
}

// SessionFinished counts a terminal session.
func (m *Metrics) SessionFinished(state voice.State, kind voice.Kind) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(string(state), string(kind)).Inc()
}

// ObserveOracle records one oracle call. Its signature matches
// gemini.Observer.
func (m *Metrics) ObserveOracle(call string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(voice.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	m.oracle.WithLabelValues(call, result).Observe(elapsed.Seconds())
}

// TodosCreated adds n written todos.
func (m *Metrics) TodosCreated(n int) {
	if m == nil {
		return
	}
	m.todosCreated.Add(float64(n))
}
