// Package kinematics defines the longitudinal motion models a simulated host uses
// to turn commanded acceleration into vehicle speed and distance.
//
// Adding a model only requires implementing Model and registering it in the JSON
// discriminator in the vehicle package; the simulation loop never changes.
package kinematics

// State is the longitudinal state of the vehicle.
type State struct {
	V float64 `json:"v"` // m/s, never negative
	A float64 `json:"a"` // m/s², actual acceleration over the last step
}

// Model is the physics contract every kinematics implementation must satisfy.
// Distances are in metres, velocities in m/s, accelerations in m/s² and time in seconds.
type Model interface {
	// Step applies the commanded acceleration aCmd for dt seconds starting from s.
	// Returns the new state and the distance travelled.
	Step(s State, aCmd, dt float64) (next State, dist float64)
}
