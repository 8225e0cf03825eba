package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ConnectResult(true)
	m.Disconnected()
	m.EventTransmitted("STROBES_TOGGLE")
	m.EncodingAborted("raw")
	m.DataRequested("PlaneState")
	m.HostMessage("data")
	m.HostException("ERROR")
	m.PollError()
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("msfs-agent", reg)

	m.ConnectResult(false)
	m.ConnectResult(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectAttempts.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connected))

	m.Disconnected()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connected))

	m.EventTransmitted("NAV1_RADIO_SET")
	m.EventTransmitted("NAV1_RADIO_SET")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTransmitted.WithLabelValues("NAV1_RADIO_SET")))

	m.PollError()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReceiverPollErrors))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("msfs-agent", reg)
	m.HostException("NAME_UNRECOGNIZED")

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `msfs_agent_host_exceptions_total{client_name="msfs-agent",code="NAME_UNRECOGNIZED"} 1`), body)
}

type fakeAgent struct {
	connected bool
	polling   bool
}

func (f fakeAgent) Connected() bool      { return f.connected }
func (f fakeAgent) Polling() bool        { return f.polling }
func (f fakeAgent) StartTime() time.Time { return time.Now().Add(-time.Minute) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		agent  fakeAgent
		code   int
		status string
	}{
		{"connected", fakeAgent{connected: true, polling: true}, http.StatusOK, "connected"},
		{"disconnected", fakeAgent{}, http.StatusServiceUnavailable, "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthHandler(tt.agent).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body["status"])
			assert.Equal(t, tt.agent.polling, body["polling"])
		})
	}
}
