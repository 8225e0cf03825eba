package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for one agent. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	ConnectAttempts    *prometheus.CounterVec
	Connected          prometheus.Gauge
	EventsTransmitted  *prometheus.CounterVec
	EncodingAborts     *prometheus.CounterVec
	DataRequests       *prometheus.CounterVec
	HostMessages       *prometheus.CounterVec
	HostExceptions     *prometheus.CounterVec
	ReceiverPollErrors prometheus.Counter
}

// New creates the agent metrics and registers them with reg
func New(clientName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"client_name": clientName}
	m := &Metrics{
		ConnectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "msfs_agent_connect_attempts_total",
				Help:        "Host connect attempts by result",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		Connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "msfs_agent_connected",
				Help:        "1 while a host session is open",
				ConstLabels: labels,
			},
		),
		EventsTransmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "msfs_agent_events_transmitted_total",
				Help:        "Client events sent to the host",
				ConstLabels: labels,
			},
			[]string{"event"},
		),
		EncodingAborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "msfs_agent_encoding_aborts_total",
				Help:        "Events dropped because their data could not be encoded",
				ConstLabels: labels,
			},
			[]string{"policy"},
		),
		DataRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "msfs_agent_data_requests_total",
				Help:        "Data requests sent to the host",
				ConstLabels: labels,
			},
			[]string{"request"},
		),
		HostMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "msfs_agent_host_messages_total",
				Help:        "Inbound host messages by kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		HostExceptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "msfs_agent_host_exceptions_total",
				Help:        "Host exceptions by code",
				ConstLabels: labels,
			},
			[]string{"code"},
		),
		ReceiverPollErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "msfs_agent_receiver_poll_errors_total",
				Help:        "Receiver polls that failed or panicked",
				ConstLabels: labels,
			},
		),
	}

	reg.MustRegister(
		m.ConnectAttempts,
		m.Connected,
		m.EventsTransmitted,
		m.EncodingAborts,
		m.DataRequests,
		m.HostMessages,
		m.HostExceptions,
		m.ReceiverPollErrors,
	)
	return m
}

func (m *Metrics) ConnectResult(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.ConnectAttempts.WithLabelValues(result).Inc()
	if ok {
		m.Connected.Set(1)
	}
}

func (m *Metrics) Disconnected() {
	if m == nil {
		return
	}
	m.Connected.Set(0)
}

func (m *Metrics) EventTransmitted(event string) {
	if m == nil {
		return
	}
	m.EventsTransmitted.WithLabelValues(event).Inc()
}

func (m *Metrics) EncodingAborted(policy string) {
	if m == nil {
		return
	}
	m.EncodingAborts.WithLabelValues(policy).Inc()
}

func (m *Metrics) DataRequested(request string) {
	if m == nil {
		return
	}
	m.DataRequests.WithLabelValues(request).Inc()
}

func (m *Metrics) HostMessage(kind string) {
	if m == nil {
		return
	}
	m.HostMessages.WithLabelValues(kind).Inc()
}

func (m *Metrics) HostException(code string) {
	if m == nil {
		return
	}
	m.HostExceptions.WithLabelValues(code).Inc()
}

func (m *Metrics) PollError() {
	if m == nil {
		return
	}
	m.ReceiverPollErrors.Inc()
}

// MetricsHandler returns the Prometheus HTTP handler for g
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// AgentInfo provides agent state for health reporting
type AgentInfo interface {
	Connected() bool
	Polling() bool
	StartTime() time.Time
}

// HealthHandler returns a health check endpoint handler. It answers 503
// while no host session is open.
func HealthHandler(agent AgentInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected := agent.Connected()
		status := "connected"
		code := http.StatusOK
		if !connected {
			status = "disconnected"
			code = http.StatusServiceUnavailable
		}

		health := map[string]interface{}{
			"status":  status,
			"polling": agent.Polling(),
			"uptime":  time.Since(agent.StartTime()).Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(health)
	}
}
