// Package metrics exposes profile executor activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cxd309/accel-profile/internal/profile"
)

// Collector holds the executor metrics, labelled by run.
type Collector struct {
	TicksTotal     *prometheus.CounterVec
	StageChanges   *prometheus.CounterVec
	StartsTotal    *prometheus.CounterVec
	StopsTotal     *prometheus.CounterVec
	CurrentStage   *prometheus.GaugeVec
	Running        *prometheus.GaugeVec
	CommandedAccel *prometheus.GaugeVec
	ControlState   *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "ticks_total",
			Help:      "Total executor ticks by control state",
		}, []string{"run", "state"}),

		StageChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "stage_changes_total",
			Help:      "Total stage pointer advances",
		}, []string{"run"}),

		StartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "starts_total",
			Help:      "Total schedule starts and restarts",
		}, []string{"run"}),

		StopsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "stops_total",
			Help:      "Total transitions from running to stopped, by cause",
		}, []string{"run", "cause"}),

		CurrentStage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "current_stage",
			Help:      "Current stage index (equals the stage count once exhausted)",
		}, []string{"run"}),

		Running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "running",
			Help:      "1 while the schedule is playing back",
		}, []string{"run"}),

		CommandedAccel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "commanded_accel_mps2",
			Help:      "Last commanded acceleration after clipping",
		}, []string{"run"}),

		ControlState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "accelprofile",
			Subsystem: "executor",
			Name:      "control_state",
			Help:      "1 for the control state selected on the last tick, 0 otherwise",
		}, []string{"run", "state"}),
	}

	reg.MustRegister(
		c.TicksTotal,
		c.StageChanges,
		c.StartsTotal,
		c.StopsTotal,
		c.CurrentStage,
		c.Running,
		c.CommandedAccel,
		c.ControlState,
	)
	return c
}

var states = []profile.ControlState{profile.StateOff, profile.StateStopping, profile.StateTracking}

// ObserveTick records the executor snapshot taken after a tick. prev is the
// snapshot from before the tick.
func (c *Collector) ObserveTick(run string, prev, cur profile.Snapshot) {
	c.TicksTotal.WithLabelValues(run, string(cur.State)).Inc()
	c.CurrentStage.WithLabelValues(run).Set(float64(cur.Stage))
	c.CommandedAccel.WithLabelValues(run).Set(cur.LastOutput)

	running := 0.0
	if cur.Running {
		running = 1
	}
	c.Running.WithLabelValues(run).Set(running)

	for _, s := range states {
		v := 0.0
		if s == cur.State {
			v = 1
		}
		c.ControlState.WithLabelValues(run, string(s)).Set(v)
	}

	if prev.Running && cur.Stage > prev.Stage && cur.Stage < cur.Stages {
		c.StageChanges.WithLabelValues(run).Inc()
	}
	if prev.Running && !cur.Running {
		cause := "exhausted"
		if cur.State == profile.StateOff {
			cause = "disengaged"
		}
		c.StopsTotal.WithLabelValues(run, cause).Inc()
	}
}

// ObserveStart records a schedule start or restart.
func (c *Collector) ObserveStart(run string) {
	c.StartsTotal.WithLabelValues(run).Inc()
}
