package profile

// ControlState is the longitudinal control state the executor reacts to each tick.
type ControlState string

const (
	StateOff      ControlState = "off"
	StateStopping ControlState = "stopping"
	// StateTracking means the schedule is being played back. Other longitudinal
	// controllers use the same slot for closed-loop tracking.
	StateTracking ControlState = "tracking"
)

// Classify maps engagement and vehicle signals to a ControlState.
// lastAccel is the previous commanded acceleration, used as a stand-in for the
// vehicle's current acceleration.
func Classify(active, brakePressed bool, vEgo, vEgoStopping, lastAccel float64) ControlState {
	switch {
	case !active || brakePressed:
		return StateOff
	case lastAccel <= 0 && vEgo < vEgoStopping:
		return StateStopping
	default:
		return StateTracking
	}
}
