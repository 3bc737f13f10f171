// Package profile plays back a pre-authored longitudinal acceleration plan.
//
// An Executor is stepped once per control-loop tick by its host. Each tick:
//
//  1. Classify - engagement, brake and speed signals select a ControlState.
//     The previous tick's output stands in for the current acceleration.
//
//  2. Playback - Off stops the schedule; otherwise a running executor advances
//     at most one stage against the elapsed time since Start and emits that
//     stage's acceleration (zero once the plan is exhausted).
//
// The output is always clipped to the actuator limits supplied for the tick.
// Time is injected by the caller, so an Executor never reads a clock itself.
package profile

import (
	"errors"
	"math"
	"time"
)

// ErrEmptyPlan is returned when an executor is constructed without stages.
var ErrEmptyPlan = errors.New("plan must have at least one stage")

// AccelLimits is the actuator acceleration range for a single tick (m/s²).
type AccelLimits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Inputs are the host-supplied signals for one tick.
type Inputs struct {
	Active       bool
	BrakePressed bool
	VEgo         float64 // m/s
	VEgoStopping float64 // m/s; below this speed a non-positive command means stopping
	Limits       AccelLimits
}

// Executor owns a plan, its derived schedule, and the playback state.
// It is not safe for concurrent use; the host loop owns it exclusively.
type Executor struct {
	plan     Plan
	schedule []ScheduleEntry

	state      ControlState
	stage      int
	startTime  time.Time
	running    bool
	lastOutput float64
}

// New builds an idle executor for plan. The plan is copied.
func New(plan Plan) (*Executor, error) {
	if len(plan) == 0 {
		return nil, ErrEmptyPlan
	}
	p := make(Plan, len(plan))
	copy(p, plan)
	return &Executor{
		plan:     p,
		schedule: BuildSchedule(p),
		state:    StateOff,
	}, nil
}

// MustNew is like New but panics if the plan is empty.
func MustNew(plan Plan) *Executor {
	e, err := New(plan)
	if err != nil {
		panic(err)
	}
	return e
}

// Start restarts playback from the first stage, timing from now.
func (e *Executor) Start(now time.Time) {
	e.stage = 0
	e.startTime = now
	e.running = true
}

// Stop halts playback and parks the stage pointer past the last stage.
func (e *Executor) Stop() {
	e.stage = len(e.schedule)
	e.running = false
}

// Update runs one control tick at time now and returns the commanded
// acceleration, clipped to in.Limits.
func (e *Executor) Update(now time.Time, in Inputs) float64 {
	e.state = Classify(in.Active, in.BrakePressed, in.VEgo, in.VEgoStopping, e.lastOutput)

	var accel float64
	switch {
	case e.state == StateOff:
		e.Stop()
	case !e.running:
		// Stopped or exhausted while still engaged: hold zero until restarted.
	case e.state == StateStopping:
		// No stopping-specific policy yet; playback continues as for tracking.
		accel = e.advance(now)
	default:
		accel = e.advance(now)
	}

	e.lastOutput = clip(accel, in.Limits.Min, in.Limits.Max)
	return e.lastOutput
}

// advance moves the stage pointer forward by at most one stage and returns the
// target acceleration for the resulting stage. A late tick that skips several
// boundaries still advances only one.
func (e *Executor) advance(now time.Time) float64 {
	elapsed := now.Sub(e.startTime).Seconds()
	if elapsed > e.schedule[e.stage].EndTime {
		e.stage++
	}
	if e.stage < len(e.schedule) {
		return e.schedule[e.stage].Accel
	}
	e.Stop()
	return 0
}

func (e *Executor) IsRunning() bool { return e.running }

func (e *Executor) CurrentStage() int { return e.stage }

// State returns the classification made by the most recent Update.
func (e *Executor) State() ControlState { return e.state }

func (e *Executor) LastOutput() float64 { return e.lastOutput }

func (e *Executor) StartTime() time.Time { return e.startTime }

// Len returns the number of stages.
func (e *Executor) Len() int { return len(e.schedule) }

// Plan returns a copy of the executor's plan.
func (e *Executor) Plan() Plan {
	p := make(Plan, len(e.plan))
	copy(p, e.plan)
	return p
}

// Schedule returns a copy of the derived schedule.
func (e *Executor) Schedule() []ScheduleEntry {
	s := make([]ScheduleEntry, len(e.schedule))
	copy(s, e.schedule)
	return s
}

// Remaining returns the seconds left until the schedule ends, or 0 when idle.
func (e *Executor) Remaining(now time.Time) float64 {
	if !e.running {
		return 0
	}
	end := e.schedule[len(e.schedule)-1].EndTime
	return math.Max(0, end-now.Sub(e.startTime).Seconds())
}

// Snapshot is a point-in-time view of an executor for logs and dashboards.
type Snapshot struct {
	State       ControlState `json:"control_state"`
	Stage       int          `json:"stage"`
	Stages      int          `json:"stages"`
	Running     bool         `json:"running"`
	LastOutput  float64      `json:"last_output"`  // m/s²
	StageTarget float64      `json:"stage_target"` // m/s²; 0 once past the last stage
}

// Snapshot returns the current diagnostics of e.
func (e *Executor) Snapshot() Snapshot {
	s := Snapshot{
		State:      e.state,
		Stage:      e.stage,
		Stages:     len(e.schedule),
		Running:    e.running,
		LastOutput: e.lastOutput,
	}
	if e.stage < len(e.schedule) {
		s.StageTarget = e.schedule[e.stage].Accel
	}
	return s
}

// clip restricts x to [lo, hi]. When lo > hi the result is lo.
func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
