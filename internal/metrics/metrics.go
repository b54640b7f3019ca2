// Package metrics exports burst progress as Prometheus collectors. The
// collectors are registered on a caller-supplied registry so that tests and
// parallel runs never share state.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/tutorburst/internal/session"
)

const namespace = "tutorburst"

// Recorder implements orchestrator.Observer on top of Prometheus.
type Recorder struct {
	running         prometheus.Gauge
	sessions        *prometheus.CounterVec
	sessionDuration *prometheus.HistogramVec
	burstDuration   prometheus.Gauge
	burstSize       prometheus.Gauge
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		running: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_running",
			Help:      "Sessions currently executing their script.",
		}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions that reached a terminal status, by status.",
		}, []string{"status"}),
		sessionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall-clock time from session start to terminal status.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"status"}),
		burstDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "burst_duration_seconds",
			Help:      "Wall-clock time of the last completed burst.",
		}),
		burstSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "burst_sessions",
			Help:      "Number of sessions in the last burst.",
		}),
	}
}

func (r *Recorder) SessionStarted(int) {
	r.running.Inc()
}

func (r *Recorder) SessionFinished(o session.Outcome) {
	r.running.Dec()
	status := o.Status.String()
	r.sessions.WithLabelValues(status).Inc()
	r.sessionDuration.WithLabelValues(status).Observe(o.Duration().Seconds())
}

func (r *Recorder) BurstFinished(sessions int, d time.Duration) {
	r.burstSize.Set(float64(sessions))
	r.burstDuration.Set(d.Seconds())
}

// SessionsTotal returns the counter of sessions that ended in status.
func (r *Recorder) SessionsTotal(status session.Status) prometheus.Counter {
	return r.sessions.WithLabelValues(status.String())
}
