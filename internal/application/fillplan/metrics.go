package fillplan

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics colectores Prometheus del planificador.
type Metrics struct {
	runs      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  prometheus.Histogram
	usedRatio prometheus.Histogram
}

// NewMetrics registra los colectores en reg (prometheus.DefaultRegisterer en producción,
// un registry nuevo en tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fillplan",
			Name:      "runs_total",
			Help:      "Corridas del planificador completadas, por resultado.",
		}, []string{"outcome"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fillplan",
			Name:      "run_failures_total",
			Help:      "Corridas rechazadas, por motivo.",
		}, []string{"reason"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fillplan",
			Name:      "run_duration_seconds",
			Help:      "Duración de la corrida (carga de hechos + cálculo + guardado).",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		usedRatio: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fillplan",
			Name:      "bulk_used_ratio",
			Help:      "Fracción del granel (tras urgentes) asignada a empaques.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}

func (m *Metrics) observeRun(outcome string, usedRatio float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.usedRatio.Observe(usedRatio)
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeFailure(reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
	m.duration.Observe(elapsed.Seconds())
}
