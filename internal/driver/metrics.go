package driver

import (
	"strconv"

	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "flock"
	driverSubsystem  = "driver"
)

// Metrics holds the Prometheus instruments updated on every tick.
type Metrics struct {
	// TickDuration measures the wall time of one step over all flocks.
	TickDuration prometheus.Histogram

	// Members is the member count of each flock after its tick.
	// Labels: flock (index in spawn order)
	Members *prometheus.GaugeVec

	// StaleTotal counts ids a flock dropped because they no longer resolved.
	StaleTotal prometheus.Counter

	// PolicyErrorsTotal counts members skipped because steering failed.
	PolicyErrorsTotal prometheus.Counter

	// OverrunsTotal counts ticks that took longer than their frame budget.
	OverrunsTotal prometheus.Counter
}

// NewMetrics registers the driver instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one simulation step over all flocks",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12), // 50us to ~100ms
		}),
		Members: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "members",
			Help:      "Number of boids registered with each flock",
		}, []string{"flock"}),
		StaleTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "stale_members_total",
			Help:      "Member ids dropped because they no longer resolved to a boid of the flock",
		}),
		PolicyErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "policy_errors_total",
			Help:      "Members skipped because the steering policy failed",
		}),
		OverrunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: driverSubsystem,
			Name:      "tick_overruns_total",
			Help:      "Ticks that took longer than the frame interval",
		}),
	}
}

func (m *Metrics) observeFlock(index int, members int, stats flock.TickStats) {
	if m == nil {
		return
	}
	m.Members.WithLabelValues(strconv.Itoa(index)).Set(float64(members))
	m.StaleTotal.Add(float64(stats.Stale))
	m.PolicyErrorsTotal.Add(float64(stats.Failed))
}
