// ABOUTME: Prometheus metrics for the turn driver: turns, sessions, guard retries, LLM latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter, gauge, and histogram the driver and session
// store report against. Construct one with New and share it between the
// driver and the session store.
type Metrics struct {
	// TurnsTotal counts turns by the entry node the turn was routed to.
	// Labels: node (greeting|extraction|validate_input|tool_handler|conversation)
	TurnsTotal *prometheus.CounterVec

	// TurnDuration measures wall-clock time for one full Driver.Run call.
	// Labels: node
	TurnDuration *prometheus.HistogramVec

	// SessionsActive is the current number of sessions held by the store.
	SessionsActive prometheus.Gauge

	// SessionsCreatedTotal counts sessions created since startup.
	SessionsCreatedTotal prometheus.Counter

	// SessionsExpiredTotal counts sessions reaped by the TTL sweep.
	SessionsExpiredTotal prometheus.Counter

	// GuardRetriesTotal counts corrective retries by the guard that fired.
	// Labels: reason (unparseable|unknown_kind|reask|message_while_missing|empty_dropdown|premature_completion)
	GuardRetriesTotal *prometheus.CounterVec

	// GuardFallbacksTotal counts turns that exhausted every retry and fell
	// back to the terminal MESSAGE action.
	GuardFallbacksTotal prometheus.Counter

	// LLMRequestDuration measures LLM completion call latency in seconds.
	// Labels: node (extraction|conversation), status (success|error)
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestsTotal counts LLM completion calls.
	// Labels: node, status
	LLMRequestsTotal *prometheus.CounterVec

	// LLMTokensTotal counts tokens consumed.
	// Labels: direction (input|output)
	LLMTokensTotal *prometheus.CounterVec

	// ToolCallsTotal counts TOOL_CALL actions emitted, by tool name.
	ToolCallsTotal *prometheus.CounterVec
}

// New creates and registers every metric against reg. The server binary and
// the tests each pass a fresh prometheus.NewRegistry(), so repeated calls
// never collide on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formpilot_turns_total",
			Help: "Total number of turns completed, by entry node.",
		}, []string{"node"}),

		TurnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formpilot_turn_duration_seconds",
			Help:    "Wall-clock duration of a full turn.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"node"}),

		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "formpilot_sessions_active",
			Help: "Current number of sessions held in the store.",
		}),

		SessionsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "formpilot_sessions_created_total",
			Help: "Total number of sessions created.",
		}),

		SessionsExpiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "formpilot_sessions_expired_total",
			Help: "Total number of sessions reaped by the TTL sweep.",
		}),

		GuardRetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formpilot_guard_retries_total",
			Help: "Total number of corrective guard retries, by reason.",
		}, []string{"reason"}),

		GuardFallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "formpilot_guard_fallbacks_total",
			Help: "Total number of turns that exhausted every guard retry.",
		}),

		LLMRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formpilot_llm_request_duration_seconds",
			Help:    "Duration of LLM completion calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"node", "status"}),

		LLMRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formpilot_llm_requests_total",
			Help: "Total number of LLM completion calls, by node and status.",
		}, []string{"node", "status"}),

		LLMTokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formpilot_llm_tokens_total",
			Help: "Total number of LLM tokens consumed, by direction.",
		}, []string{"direction"}),

		ToolCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formpilot_tool_calls_total",
			Help: "Total number of TOOL_CALL actions emitted, by tool name.",
		}, []string{"tool_name"}),
	}
}

// RecordTurn records one completed turn's terminal node and duration.
func (m *Metrics) RecordTurn(node string, duration time.Duration) {
	m.TurnsTotal.WithLabelValues(node).Inc()
	m.TurnDuration.WithLabelValues(node).Observe(duration.Seconds())
}

// RecordGuardRetry records one corrective retry firing for reason.
func (m *Metrics) RecordGuardRetry(reason string) {
	m.GuardRetriesTotal.WithLabelValues(reason).Inc()
}

// RecordGuardFallback records a turn that exhausted every retry.
func (m *Metrics) RecordGuardFallback() {
	m.GuardFallbacksTotal.Inc()
}

// RecordLLMCall records one LLM completion call's latency, status, and
// token usage. status is "success" or "error"; inputTokens/outputTokens may
// be zero when the provider's response omits usage data.
func (m *Metrics) RecordLLMCall(node, status string, duration time.Duration, inputTokens, outputTokens int) {
	m.LLMRequestsTotal.WithLabelValues(node, status).Inc()
	m.LLMRequestDuration.WithLabelValues(node, status).Observe(duration.Seconds())
	if inputTokens > 0 {
		m.LLMTokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.LLMTokensTotal.WithLabelValues("output").Add(float64(outputTokens))
	}
}

// RecordToolCall records a TOOL_CALL action emitted for toolName.
func (m *Metrics) RecordToolCall(toolName string) {
	m.ToolCallsTotal.WithLabelValues(toolName).Inc()
}

// SessionCreated increments the created counter and the active gauge.
func (m *Metrics) SessionCreated() {
	m.SessionsCreatedTotal.Inc()
	m.SessionsActive.Inc()
}

// SessionClosed decrements the active gauge, whether the session ended via
// explicit deletion or TTL expiry. Pass expired true for the latter so it
// also counts toward SessionsExpiredTotal.
func (m *Metrics) SessionClosed(expired bool) {
	m.SessionsActive.Dec()
	if expired {
		m.SessionsExpiredTotal.Inc()
	}
}
