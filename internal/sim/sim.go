// Package sim drives a profile executor against a simulated vehicle.
//
// The simulation advances in ticks. Each tick has three parts:
//
//  1. Vehicle - the command issued on the previous tick (or the driver's brake)
//     is integrated through the vehicle's kinematics model over the elapsed time.
//
//  2. Host - scripted start requests are issued, then the car state and the
//     engagement flag are sampled and handed to the executor.
//
//  3. Log - the executor's snapshot and the vehicle state are recorded.
//
// Run steps time deterministically on a manual clock; RunRealtime paces ticks
// with a real ticker.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cxd309/accel-profile/internal/clock"
	"github.com/cxd309/accel-profile/internal/kinematics"
	"github.com/cxd309/accel-profile/internal/metrics"
	"github.com/cxd309/accel-profile/internal/profile"
	"github.com/cxd309/accel-profile/internal/vehicle"
)

// DefaultBrakeDecel is applied while the driver presses the brake if the input
// does not set one.
const DefaultBrakeDecel = 3.0 // m/s²

// epsilon absorbs float error when comparing accumulated simulation times.
const epsilon = 1e-9

// Option configures a Sim.
type Option func(*Sim)

// WithLogger sets the logger used for run events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sim) { s.logger = l }
}

// WithMetrics records every tick in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Sim) { s.metrics = c }
}

// Sim is the simulation state for one run.
type Sim struct {
	meta    SimulationMeta
	params  vehicle.Params
	driver  Driver
	exec    *profile.Executor
	logger  zerolog.Logger
	metrics *metrics.Collector

	starts   []float64 // pending Start requests, ascending
	vehicle  kinematics.State
	distance float64
	lastT    float64
	lastCmd  float64
	braking  bool

	log SimulationLog
}

// New constructs a Sim from a SimulationInput.
func New(input SimulationInput, opts ...Option) (*Sim, error) {
	if input.Meta.TimeStep <= 0 {
		return nil, fmt.Errorf("time_step must be > 0, got %v", input.Meta.TimeStep)
	}
	if seconds(input.Meta.TimeStep) == 0 {
		return nil, fmt.Errorf("time_step %v is below clock resolution", input.Meta.TimeStep)
	}
	if input.Meta.RunTime < 0 {
		return nil, fmt.Errorf("run_time must be >= 0, got %v", input.Meta.RunTime)
	}
	if input.Driver.InitialSpeed < 0 {
		return nil, fmt.Errorf("initial_speed must be >= 0, got %v", input.Driver.InitialSpeed)
	}
	for _, w := range append(append([]Window{}, input.Driver.Engaged...), input.Driver.Brake...) {
		if w.To < w.From {
			return nil, fmt.Errorf("window [%v, %v) ends before it starts", w.From, w.To)
		}
	}

	exec, err := profile.New(input.Plan)
	if err != nil {
		return nil, fmt.Errorf("building executor: %w", err)
	}

	meta := input.Meta
	if meta.SimulationID == "" {
		meta.SimulationID = uuid.NewString()
	}

	params := vehicle.DefaultParams("default")
	if input.Vehicle != nil {
		params = *input.Vehicle
		if params.Kinem == nil {
			params.Kinem = kinematics.PointMass{}
		}
	}

	driver := input.Driver
	if driver.BrakeDecel <= 0 {
		driver.BrakeDecel = DefaultBrakeDecel
	}

	starts := append([]float64{driver.StartAt}, driver.RestartAt...)
	sort.Float64s(starts)

	s := &Sim{
		meta:    meta,
		params:  params,
		driver:  driver,
		exec:    exec,
		logger:  zerolog.Nop(),
		starts:  starts,
		vehicle: kinematics.State{V: driver.InitialSpeed},
		log: SimulationLog{
			Meta:     meta,
			Schedule: exec.Schedule(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("simulation_id", meta.SimulationID).Logger()
	return s, nil
}

// Executor returns the executor driven by the simulation.
func (s *Sim) Executor() *profile.Executor { return s.exec }

// Run executes the full simulation on a manual clock and returns the log.
func (s *Sim) Run() SimulationLog {
	base := time.Unix(0, 0)
	clk := clock.NewManual(base)

	// Ticks are counted in whole steps so the executor sees exactly i*step
	// elapsed, never a nanosecond past a stage boundary.
	step := seconds(s.meta.TimeStep)
	n := int(math.Floor(s.meta.RunTime/s.meta.TimeStep + epsilon))
	for i := 0; i <= n; i++ {
		t := float64(i) * s.meta.TimeStep
		clk.Set(base.Add(time.Duration(i) * step))
		s.step(t, clk.Now())
	}
	return s.finish()
}

// RunRealtime paces ticks every time_step using clk until run_time has elapsed
// or ctx is done. The log recorded so far is returned in both cases, together
// with ctx.Err() when the run was cut short.
func (s *Sim) RunRealtime(ctx context.Context, clk clock.Clock) (SimulationLog, error) {
	base := clk.Now()
	ticker := clk.NewTicker(seconds(s.meta.TimeStep))
	defer ticker.Stop()

	s.logger.Info().
		Float64("run_time", s.meta.RunTime).
		Float64("time_step", s.meta.TimeStep).
		Msg("real-time run started")

	s.step(0, base)
	for {
		select {
		case <-ctx.Done():
			s.logger.Warn().Err(ctx.Err()).Msg("real-time run interrupted")
			return s.finish(), ctx.Err()
		case <-ticker.C():
			now := clk.Now()
			t := now.Sub(base).Seconds()
			if t > s.meta.RunTime+epsilon {
				return s.finish(), nil
			}
			s.step(t, now)
		}
	}
}

// step advances the vehicle to simulation time t and runs one controller tick.
func (s *Sim) step(t float64, now time.Time) {
	// Vehicle: integrate what was applied since the last tick.
	if dt := t - s.lastT; dt > 0 {
		applied := s.lastCmd
		if s.braking {
			applied = -s.driver.BrakeDecel
		}
		var dist float64
		s.vehicle, dist = s.params.Kinem.Step(s.vehicle, applied, dt)
		s.distance += dist
	}
	s.lastT = t

	// Host: start requests, then sample and tick.
	for len(s.starts) > 0 && t+epsilon >= s.starts[0] {
		s.starts = s.starts[1:]
		s.exec.Start(now)
		s.log.Summary.Starts++
		if s.metrics != nil {
			s.metrics.ObserveStart(s.meta.SimulationID)
		}
		s.logger.Info().Float64("t", t).Msg("profile started")
	}

	active := s.driver.engagedAt(t)
	s.braking = s.driver.brakingAt(t)
	cs := vehicle.CarState{VEgo: s.vehicle.V, AEgo: s.vehicle.A, BrakePressed: s.braking}

	prev := s.exec.Snapshot()
	s.lastCmd = s.exec.Update(now, s.params.Inputs(active, cs))
	cur := s.exec.Snapshot()

	s.observe(t, prev, cur)

	status := StatusDisabled
	switch {
	case s.log.Summary.Starts == 0:
		status = StatusStale
	case cur.Running:
		status = StatusEnabled
	}
	s.log.Output = append(s.log.Output, SimulationLogRow{
		Timestamp:     t,
		ControlState:  cur.State,
		Stage:         cur.Stage,
		Running:       cur.Running,
		ProfileStatus: status,
		Active:        active,
		BrakePressed:  s.braking,
		AccelCmd:      s.lastCmd,
		VEgo:          s.vehicle.V,
		AEgo:          s.vehicle.A,
		Distance:      s.distance,
	})
	s.log.Summary.Ticks++
	s.log.Summary.MaxSpeed = math.Max(s.log.Summary.MaxSpeed, s.vehicle.V)
	s.log.Summary.Distance = s.distance
}

// observe logs and counts the transitions between two snapshots.
func (s *Sim) observe(t float64, prev, cur profile.Snapshot) {
	if s.metrics != nil {
		s.metrics.ObserveTick(s.meta.SimulationID, prev, cur)
	}

	if prev.Running && cur.Stage > prev.Stage && cur.Stage < cur.Stages {
		s.log.Summary.StageChanges++
		s.logger.Debug().
			Float64("t", t).
			Int("stage", cur.Stage).
			Float64("target", cur.StageTarget).
			Msg("stage advanced")
	}

	if prev.Running && !cur.Running {
		if cur.State == profile.StateOff {
			s.log.Summary.Disengaged = true
			s.logger.Info().Float64("t", t).Int("stage", prev.Stage).Msg("profile stopped: disengaged")
		} else {
			s.log.Summary.Exhausted = true
			s.logger.Info().Float64("t", t).Msg("profile finished")
		}
	}
}

func (s *Sim) finish() SimulationLog {
	s.logger.Info().
		Int("ticks", s.log.Summary.Ticks).
		Int("stage_changes", s.log.Summary.StageChanges).
		Bool("exhausted", s.log.Summary.Exhausted).
		Float64("distance", s.log.Summary.Distance).
		Msg("run complete")
	return s.log
}

// seconds converts f to the nearest nanosecond.
func seconds(f float64) time.Duration {
	return time.Duration(math.Round(f * float64(time.Second)))
}

// RunInput validates input, runs it, and returns the log.
func RunInput(input SimulationInput, opts ...Option) (SimulationLog, error) {
	s, err := New(input, opts...)
	if err != nil {
		return SimulationLog{}, err
	}
	return s.Run(), nil
}

// ErrInvalidInput wraps JSON decoding failures in RunJSON.
var ErrInvalidInput = errors.New("invalid input JSON")

// Error kinds reported by ErrorKind.
const (
	ErrKindDecode = "decode" // input was not a valid SimulationInput document
	ErrKindPlan   = "plan"   // the plan has no stages
	ErrKindInput  = "input"  // any other rejected input
)

// ErrorKind classifies an error returned by RunJSON or New for callers that
// report errors as data rather than Go values.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ErrKindDecode
	case errors.Is(err, profile.ErrEmptyPlan):
		return ErrKindPlan
	default:
		return ErrKindInput
	}
}

// RunJSON is the entry point shared by the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	simLog, err := RunInput(input, opts...)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
