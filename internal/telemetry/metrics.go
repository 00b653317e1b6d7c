// Package telemetry exports puzzle activity as Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SeamusWaldron/cubesim"
)

const namespace = "cubesim"

// Metrics counts moves, turns and replays. It is a cubesim.Observer.
type Metrics struct {
	MovesAccepted  *prometheus.CounterVec
	MovesRejected  *prometheus.CounterVec
	TurnsCompleted *prometheus.CounterVec
	Replays        prometheus.Counter
	ReplayUndone   prometheus.Histogram
	Replaying      prometheus.Gauge
	Solved         prometheus.Gauge
	Clients        prometheus.Gauge
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer for the process registry or a private
// registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		MovesAccepted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moves_accepted_total",
				Help:      "Moves that started a turn, by source",
			},
			[]string{"source"},
		),
		MovesRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moves_rejected_total",
				Help:      "Moves dropped without effect, by reason",
			},
			[]string{"reason"},
		),
		TurnsCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_completed_total",
				Help:      "Quarter turns applied to the slot table, by face and source",
			},
			[]string{"face", "source"},
		),
		Replays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replays_total",
			Help:      "Replays started",
		}),
		ReplayUndone: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_undone_moves",
			Help:      "Moves undone per finished replay",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Replaying: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replaying",
			Help:      "1 while a replay is running",
		}),
		Solved: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "solved",
			Help:      "1 when the last completed turn left the puzzle solved",
		}),
		Clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket renderers",
		}),
	}
	m.Solved.Set(1)
	return m
}

func (m *Metrics) MoveAccepted(_ cubesim.Move, src cubesim.Source) {
	m.MovesAccepted.WithLabelValues(string(src)).Inc()
}

func (m *Metrics) MoveRejected(_ cubesim.Move, reason cubesim.RejectReason) {
	m.MovesRejected.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) TurnCompleted(mv cubesim.Move, src cubesim.Source, table cubesim.Table) {
	m.TurnsCompleted.WithLabelValues(mv.Face.String(), string(src)).Inc()
	if table.IsSolved() {
		m.Solved.Set(1)
	} else {
		m.Solved.Set(0)
	}
}

func (m *Metrics) ReplayStarted(int) {
	m.Replays.Inc()
	m.Replaying.Set(1)
}

func (m *Metrics) ReplayFinished(undone int) {
	m.ReplayUndone.Observe(float64(undone))
	m.Replaying.Set(0)
}
