package sim

import (
	"github.com/cxd309/accel-profile/internal/profile"
	"github.com/cxd309/accel-profile/internal/vehicle"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
}

// Window is a half-open time interval [From, To) in simulation seconds.
type Window struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

func (w Window) contains(t float64) bool { return t >= w.From && t < w.To }

// Driver scripts the supervising system and the human driver.
type Driver struct {
	// StartAt is when the host first calls Start on the executor.
	StartAt float64 `json:"start_at"` // seconds
	// RestartAt lists further Start calls.
	RestartAt []float64 `json:"restart_at,omitempty"` // seconds
	// Engaged lists when the assistance system has control authority.
	// Empty means engaged for the whole run.
	Engaged []Window `json:"engaged,omitempty"`
	// Brake lists when the driver presses the brake pedal.
	Brake []Window `json:"brake,omitempty"`
	// BrakeDecel is the deceleration applied while the pedal is pressed.
	BrakeDecel float64 `json:"brake_decel,omitempty"` // m/s², positive
	// InitialSpeed is the vehicle speed at t=0.
	InitialSpeed float64 `json:"initial_speed,omitempty"` // m/s
}

func (d Driver) engagedAt(t float64) bool {
	if len(d.Engaged) == 0 {
		return true
	}
	return inAny(d.Engaged, t)
}

func (d Driver) brakingAt(t float64) bool { return inAny(d.Brake, t) }

func inAny(ws []Window, t float64) bool {
	for _, w := range ws {
		if w.contains(t) {
			return true
		}
	}
	return false
}

// SimulationInput is the JSON-serialisable input to the simulator.
type SimulationInput struct {
	Meta    SimulationMeta  `json:"simulation_meta"`
	Vehicle *vehicle.Params `json:"vehicle,omitempty"`
	Plan    profile.Plan    `json:"plan"`
	Driver  Driver          `json:"driver"`
}

// Profile status strings, as shown on the driver display. StatusStale marks
// ticks before the first start request, when there is no profile state for
// this run to report yet.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
	StatusStale    = "disabled?"
)

// SimulationLogRow is the state of the controller and vehicle at a single tick.
type SimulationLogRow struct {
	Timestamp     float64              `json:"timestamp"` // seconds
	ControlState  profile.ControlState `json:"control_state"`
	Stage         int                  `json:"stage"`
	Running       bool                 `json:"running"`
	ProfileStatus string               `json:"profile_status"`
	Active        bool                 `json:"active"`
	BrakePressed  bool                 `json:"brake_pressed"`
	AccelCmd      float64              `json:"accel_cmd"` // m/s²
	VEgo          float64              `json:"v_ego"`     // m/s
	AEgo          float64              `json:"a_ego"`     // m/s²
	Distance      float64              `json:"distance"`  // metres
}

// Summary aggregates a run.
type Summary struct {
	Ticks        int     `json:"ticks"`
	Starts       int     `json:"starts"`
	StageChanges int     `json:"stage_changes"`
	Exhausted    bool    `json:"exhausted"`
	Disengaged   bool    `json:"disengaged"`
	MaxSpeed     float64 `json:"max_speed"` // m/s
	Distance     float64 `json:"distance"`  // metres
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta     SimulationMeta          `json:"simulation_meta"`
	Schedule []profile.ScheduleEntry `json:"schedule"`
	Output   []SimulationLogRow      `json:"output"`
	Summary  Summary                 `json:"summary"`
}
