package metrics

import "github.com/prometheus/client_golang/prometheus"

// AgentMetrics exposes counters/histograms for the scheduling agent.
type AgentMetrics struct {
	actionTotal  *prometheus.CounterVec
	bookingTotal *prometheus.CounterVec
	decideRounds prometheus.Histogram
	chatLatency  prometheus.Histogram
}

func NewAgentMetrics(reg prometheus.Registerer) *AgentMetrics {
	m := &AgentMetrics{
		actionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "agent",
			Name:      "action_total",
			Help:      "Total catalog actions executed by the dispatch loop",
		}, []string{"action", "status"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "engine",
			Name:      "booking_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		decideRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Subsystem: "agent",
			Name:      "decide_rounds",
			Help:      "Decision-maker rounds per dispatch loop invocation",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8},
		}),
		chatLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Subsystem: "agent",
			Name:      "chat_latency_seconds",
			Help:      "End-to-end latency of one chat invocation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionTotal, m.bookingTotal, m.decideRounds, m.chatLatency)
	return m
}

func (m *AgentMetrics) ObserveAction(action, status string) {
	if m == nil {
		return
	}
	m.actionTotal.WithLabelValues(action, status).Inc()
}

func (m *AgentMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

func (m *AgentMetrics) ObserveDecideRounds(rounds int) {
	if m == nil {
		return
	}
	m.decideRounds.Observe(float64(rounds))
}

func (m *AgentMetrics) ObserveChatLatency(seconds float64) {
	if m == nil {
		return
	}
	m.chatLatency.Observe(seconds)
}
