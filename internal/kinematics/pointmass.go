package kinematics

import "math"

// PointMassModelName is the JSON discriminator string for PointMass.
const PointMassModelName = "point_mass"

// PointMass tracks the commanded acceleration exactly. The vehicle never
// reverses and never exceeds VMax (0 means unlimited).
//
// JSON discriminator: "model": "point_mass"
type PointMass struct {
	VMax float64 `json:"v_max,omitempty"` // m/s
}

func (m PointMass) Step(s State, aCmd, dt float64) (State, float64) {
	return integrate(s.V, aCmd, dt, m.VMax)
}

// integrate advances v under constant acceleration a for dt seconds, stopping
// at zero speed or holding at vMax if either is reached mid-step.
func integrate(v, a, dt, vMax float64) (State, float64) {
	if dt <= 0 {
		return State{V: v, A: 0}, 0
	}
	newV := v + a*dt

	if newV < 0 {
		// Reaches standstill mid-step and stays there.
		if a >= 0 {
			return State{V: 0, A: 0}, 0
		}
		tStop := v / -a
		dist := v*tStop + 0.5*a*tStop*tStop
		return State{V: 0, A: -v / dt}, math.Max(0, dist)
	}

	if vMax > 0 && newV > vMax {
		if v >= vMax || a <= 0 {
			return State{V: vMax, A: (vMax - v) / dt}, vMax * dt
		}
		// Reaches vMax mid-step: accelerate, then cruise for the remainder.
		tToMax := (vMax - v) / a
		s1 := v*tToMax + 0.5*a*tToMax*tToMax
		s2 := vMax * (dt - tToMax)
		return State{V: vMax, A: (vMax - v) / dt}, s1 + s2
	}

	return State{V: newV, A: a}, v*dt + 0.5*a*dt*dt
}
