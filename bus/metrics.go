// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts sends and receives keyed by (message_type, client_type).
type Metrics struct {
	sent     *prometheus.CounterVec
	received *prometheus.CounterVec
}

// NewMetrics registers the bus counters on reg. reg may be nil, in which
// case the counters still count but are not registered anywhere. A nil
// *Metrics (as passed to New by tests) records nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hyle_bus_messages_sent_total",
			Help: "Number of messages sent on the typed broadcast bus.",
		}, []string{"message_type", "client_type"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hyle_bus_messages_received_total",
			Help: "Number of messages received from the typed broadcast bus.",
		}, []string{"message_type", "client_type"}),
	}
	if reg != nil {
		reg.MustRegister(m.sent, m.received)
	}
	return m
}

func (m *Metrics) send(messageType, clientType string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(messageType, clientType).Inc()
}

func (m *Metrics) receive(messageType, clientType string) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(messageType, clientType).Inc()
}
