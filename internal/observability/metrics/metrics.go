package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the conversation flow.
type ChatMetrics struct {
	chatTotal         *prometheus.CounterVec
	llmFailures       prometheus.Counter
	fallbackTurns     prometheus.Counter
	appointmentsTotal *prometheus.CounterVec
	chatLatency       prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		chatTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by outcome",
		}, []string{"outcome"}),
		llmFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chat",
			Name:      "llm_failures_total",
			Help:      "Total LLM completion failures",
		}),
		fallbackTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chat",
			Name:      "fallback_turns_total",
			Help:      "Total turns answered by the rule-based responder",
		}),
		appointmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "appointments_total",
			Help:      "Appointment persistence attempts by status",
		}, []string{"status"}),
		chatLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one chat turn including the LLM call",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatTotal, m.llmFailures, m.fallbackTurns, m.appointmentsTotal, m.chatLatency)
	return m
}

func (m *ChatMetrics) ObserveTurn(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.chatTotal.WithLabelValues(outcome).Inc()
	m.chatLatency.Observe(seconds)
}

func (m *ChatMetrics) ObserveLLMFailure() {
	if m == nil {
		return
	}
	m.llmFailures.Inc()
}

func (m *ChatMetrics) ObserveFallbackTurn() {
	if m == nil {
		return
	}
	m.fallbackTurns.Inc()
}

// ObserveAppointment records a persistence attempt: "saved", "duplicate"
// or "failed".
func (m *ChatMetrics) ObserveAppointment(status string) {
	if m == nil {
		return
	}
	m.appointmentsTotal.WithLabelValues(status).Inc()
}
