package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestMetrics_Counters verifies every recorder updates its collector.
func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.ConnectionOpened("operate")
	m.ConnectionOpened("operate")
	m.ConnectionClosed("operate")
	m.CommandHandled("monitor", "state")
	m.ProtocolError("operate")
	m.AttributeUpdate("door_closed")

	require.InDelta(t, 1, testutil.ToFloat64(m.connections.WithLabelValues("operate")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.connectionsTotal.WithLabelValues("operate")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.commands.WithLabelValues("monitor", "state")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.protocolErrors.WithLabelValues("operate")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.attributeUpdates.WithLabelValues("door_closed")), 0)
}

// TestMetrics_NilIsNoop ensures a nil *Metrics can be passed around freely.
func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics

	require.NotPanics(t, func() {
		m.ConnectionOpened("operate")
		m.ConnectionClosed("operate")
		m.CommandHandled("operate", "on")
		m.ProtocolError("operate")
		m.AttributeUpdate("power_on")
	})
}

// TestHandler_ExposesCollectors scrapes the handler and looks for emulator series.
func TestHandler_ExposesCollectors(t *testing.T) {
	t.Parallel()

	reg, m := NewRegistry()
	m.CommandHandled("operate", "on")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, `isara_emulator_commands_total{channel="operate",command="on"} 1`), body)
	require.Contains(t, body, "go_goroutines")
}
