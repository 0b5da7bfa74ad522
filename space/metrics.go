// Copyright © 2024 Galvanized Logic Inc.

package space

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics is the optional per-tick/per-phase instrumentation (spec.md
// SPEC_FULL.md §10.5). Space always holds the non-nil *metrics built
// by newMetrics — metrics never gate correctness.
type metrics struct {
	tickDuration  prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	workerBusy    prometheus.Gauge
}

// newMetrics registers the kernel's gauges/histograms against reg. If
// reg is nil, the collectors are still created but registered nowhere,
// so Space works without a registerer.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "swarmsim_tick_duration_seconds",
			Help: "Wall-clock duration of one simulation tick.",
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "swarmsim_phase_duration_seconds",
			Help: "Wall-clock duration of one tick phase.",
		}, []string{"phase"}),
		workerBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swarmsim_worker_pool_size",
			Help: "Configured worker pool size for the active Space.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.tickDuration, m.phaseDuration, m.workerBusy)
	}
	return m
}
