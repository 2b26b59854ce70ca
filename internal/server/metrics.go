package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exported by a running detector.
type Metrics struct {
	detectionsTotal   prometheus.Counter
	sfdTimeoutsTotal  prometheus.Counter
	stateTransitions  *prometheus.CounterVec
	cfoEstimateHz     prometheus.Gauge
	samplesConsumed   prometheus.Counter
	wsActiveClients   prometheus.Gauge
}

// NewMetrics registers and returns the detector's Prometheus collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		detectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lorasniff_detections_total",
			Help: "Total number of preamble/SFD detections emitted.",
		}),
		sfdTimeoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lorasniff_sfd_timeouts_total",
			Help: "Total number of SFD searches that exhausted the recovery bound.",
		}),
		stateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lorasniff_state_transitions_total",
			Help: "Detector state transitions by from/to state.",
		}, []string{"from", "to"}),
		cfoEstimateHz: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lorasniff_cfo_estimate_hz",
			Help: "Most recent coarse carrier frequency offset estimate, in Hz.",
		}),
		samplesConsumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lorasniff_samples_consumed_total",
			Help: "Total input samples consumed by Detector.Step.",
		}),
		wsActiveClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lorasniff_ws_active_clients",
			Help: "Currently connected WebSocket clients.",
		}),
	}
}

// RecordTransition records a detector state transition, flagging a
// sfd_search->idle transition as a recovery timeout.
func (m *Metrics) RecordTransition(from, to string) {
	m.stateTransitions.WithLabelValues(from, to).Inc()
	if from == "sfd_search" && to == "idle" {
		m.sfdTimeoutsTotal.Inc()
	}
}

// RecordDetection records a completed detection and its CFO estimate.
func (m *Metrics) RecordDetection(cfoHz float64) {
	m.detectionsTotal.Inc()
	m.cfoEstimateHz.Set(cfoHz)
}

// RecordConsumed records samples consumed by a Step call.
func (m *Metrics) RecordConsumed(n int) {
	if n > 0 {
		m.samplesConsumed.Add(float64(n))
	}
}

// SetActiveClients updates the current WebSocket client gauge.
func (m *Metrics) SetActiveClients(n int) {
	m.wsActiveClients.Set(float64(n))
}
