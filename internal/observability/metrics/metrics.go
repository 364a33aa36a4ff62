package metrics

import "github.com/prometheus/client_golang/prometheus"

// CalendarMetrics exposes counters/histograms for the calendar connection
// engine. All methods are safe on a nil receiver so wiring stays optional.
type CalendarMetrics struct {
	checksTotal    *prometheus.CounterVec
	syncsTotal     *prometheus.CounterVec
	authFlowsTotal *prometheus.CounterVec
	syncDuration   prometheus.Histogram
}

func NewCalendarMetrics(reg prometheus.Registerer) *CalendarMetrics {
	m := &CalendarMetrics{
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lavenius",
			Subsystem: "calendar",
			Name:      "connection_checks_total",
			Help:      "Total calendar connection checks",
		}, []string{"result"}),
		syncsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lavenius",
			Subsystem: "calendar",
			Name:      "syncs_total",
			Help:      "Total calendar synchronizations",
		}, []string{"result"}),
		authFlowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lavenius",
			Subsystem: "calendar",
			Name:      "auth_flows_total",
			Help:      "Auth flow resolutions by outcome",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lavenius",
			Subsystem: "calendar",
			Name:      "sync_duration_seconds",
			Help:      "Duration of calendar synchronizations",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checksTotal, m.syncsTotal, m.authFlowsTotal, m.syncDuration)
	return m
}

func (m *CalendarMetrics) ObserveCheck(result string) {
	if m == nil {
		return
	}
	m.checksTotal.WithLabelValues(result).Inc()
}

func (m *CalendarMetrics) ObserveSync(result string, seconds float64) {
	if m == nil {
		return
	}
	m.syncsTotal.WithLabelValues(result).Inc()
	m.syncDuration.Observe(seconds)
}

func (m *CalendarMetrics) ObserveAuthFlow(outcome string) {
	if m == nil {
		return
	}
	m.authFlowsTotal.WithLabelValues(outcome).Inc()
}
