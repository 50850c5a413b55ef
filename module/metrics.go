// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts module lifecycle transitions and shutdown latency.
type Metrics struct {
	started         *prometheus.CounterVec
	shutdownSeconds *prometheus.HistogramVec
	crashed         *prometheus.CounterVec
}

// NewMetrics registers the supervisor's counters on reg. reg may be nil,
// in which case the counters still count but are not registered anywhere.
// A nil *Metrics records nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hyle_module_started_total",
			Help: "Number of modules started by the supervisor.",
		}, []string{"module"}),
		shutdownSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "hyle_module_shutdown_seconds",
			Help: "Time from ShutdownModule signal to ShutdownCompleted.",
		}, []string{"module"}),
		crashed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hyle_module_crashed_total",
			Help: "Number of modules that exited with an error or panic.",
		}, []string{"module"}),
	}
	if reg != nil {
		reg.MustRegister(m.started, m.shutdownSeconds, m.crashed)
	}
	return m
}

func (m *Metrics) recordStarted(module string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(module).Inc()
}

func (m *Metrics) recordShutdown(module string, d time.Duration) {
	if m == nil {
		return
	}
	m.shutdownSeconds.WithLabelValues(module).Observe(d.Seconds())
}

func (m *Metrics) recordCrash(module string) {
	if m == nil {
		return
	}
	m.crashed.WithLabelValues(module).Inc()
}
