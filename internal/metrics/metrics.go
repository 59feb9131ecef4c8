package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "isara_emulator"

// Metrics groups the emulator collectors.
type Metrics struct {
	// connections tracks open connections per channel.
	connections *prometheus.GaugeVec
	// connectionsTotal counts accepted connections per channel.
	connectionsTotal *prometheus.CounterVec
	// commands counts handled commands per channel and command name.
	commands *prometheus.CounterVec
	// protocolErrors counts connections dropped for protocol violations.
	protocolErrors *prometheus.CounterVec
	// attributeUpdates counts attribute updates pushed to overlord clients.
	attributeUpdates *prometheus.CounterVec
}

// New creates the emulator collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Open client connections per channel.",
		}, []string{"channel"}),
		connectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted client connections per channel.",
		}, []string{"channel"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Handled commands per channel and command.",
		}, []string{"channel", "command"}),
		protocolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Requests rejected as protocol violations per channel.",
		}, []string{"channel"}),
		attributeUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attribute_updates_total",
			Help:      "Attribute updates delivered to overlord clients.",
		}, []string{"attribute"}),
	}

	reg.MustRegister(m.connections, m.connectionsTotal, m.commands, m.protocolErrors, m.attributeUpdates)

	return m
}

// NewRegistry returns a registry holding the emulator, Go runtime and process collectors.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg, New(reg)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ConnectionOpened records a new connection on channel.
func (m *Metrics) ConnectionOpened(channel string) {
	if m == nil {
		return
	}

	m.connections.WithLabelValues(channel).Inc()
	m.connectionsTotal.WithLabelValues(channel).Inc()
}

// ConnectionClosed records the end of a connection on channel.
func (m *Metrics) ConnectionClosed(channel string) {
	if m == nil {
		return
	}

	m.connections.WithLabelValues(channel).Dec()
}

// CommandHandled records a successfully dispatched command.
func (m *Metrics) CommandHandled(channel, command string) {
	if m == nil {
		return
	}

	m.commands.WithLabelValues(channel, command).Inc()
}

// ProtocolError records a rejected request on channel.
func (m *Metrics) ProtocolError(channel string) {
	if m == nil {
		return
	}

	m.protocolErrors.WithLabelValues(channel).Inc()
}

// AttributeUpdate records an update pushed to an overlord client.
func (m *Metrics) AttributeUpdate(attribute string) {
	if m == nil {
		return
	}

	m.attributeUpdates.WithLabelValues(attribute).Inc()
}
