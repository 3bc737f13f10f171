package kinematics

import "math"

// FirstOrderLagModelName is the JSON discriminator string for FirstOrderLag.
const FirstOrderLagModelName = "first_order_lag"

// FirstOrderLag models an actuator whose acceleration approaches the command
// with time constant Tau. A non-positive Tau behaves like PointMass.
//
// JSON discriminator: "model": "first_order_lag"
type FirstOrderLag struct {
	Tau  float64 `json:"tau"`             // seconds
	VMax float64 `json:"v_max,omitempty"` // m/s
}

func (m FirstOrderLag) Step(s State, aCmd, dt float64) (State, float64) {
	a := aCmd
	if m.Tau > 0 && dt > 0 {
		alpha := 1 - math.Exp(-dt/m.Tau)
		a = s.A + (aCmd-s.A)*alpha
	}
	return integrate(s.V, a, dt, m.VMax)
}
