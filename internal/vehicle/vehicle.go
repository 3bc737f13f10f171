// Package vehicle holds the vehicle parameters and sampled car state the
// profile executor is fed with each tick.
package vehicle

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/accel-profile/internal/kinematics"
	"github.com/cxd309/accel-profile/internal/profile"
)

// Defaults applied when a field is omitted from the vehicle definition.
const (
	DefaultVEgoStopping = 0.5  // m/s
	DefaultAccelMin     = -3.5 // m/s²
	DefaultAccelMax     = 2.0  // m/s²
)

// Params holds the static parameters of a vehicle.
// The longitudinal physics are encapsulated by Kinem; adding a model only
// requires implementing kinematics.Model and registering it in UnmarshalJSON.
type Params struct {
	Name         string           `json:"name"`
	VEgoStopping float64          `json:"v_ego_stopping"` // m/s
	AccelMin     float64          `json:"accel_min"`      // m/s²
	AccelMax     float64          `json:"accel_max"`      // m/s²
	Kinem        kinematics.Model `json:"-"`              // set by UnmarshalJSON
}

// DefaultParams returns a point-mass vehicle with default limits.
func DefaultParams(name string) Params {
	return Params{
		Name:         name,
		VEgoStopping: DefaultVEgoStopping,
		AccelMin:     DefaultAccelMin,
		AccelMax:     DefaultAccelMax,
		Kinem:        kinematics.PointMass{},
	}
}

// kinematicsDisc is the minimum JSON structure needed to read the model discriminator.
type kinematicsDisc struct {
	Model string `json:"model"`
}

// paramsJSON is the raw JSON shape of Params, before defaults and the kinematics
// model are resolved.
type paramsJSON struct {
	Name         string          `json:"name"`
	VEgoStopping *float64        `json:"v_ego_stopping"`
	AccelMin     *float64        `json:"accel_min"`
	AccelMax     *float64        `json:"accel_max"`
	Kinem        json.RawMessage `json:"kinematics"`
}

// UnmarshalJSON implements json.Unmarshaler for Params.
// Omitted limits take the package defaults. The optional "kinematics" field must
// contain a "model" discriminator key that selects the concrete implementation;
// when omitted a PointMass is used.
//
// Supported models:
//   - "point_mass": commanded acceleration is tracked exactly.
//   - "first_order_lag": acceleration follows the command with time constant tau.
func (p *Params) UnmarshalJSON(data []byte) error {
	var aux paramsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = DefaultParams(aux.Name)
	if aux.VEgoStopping != nil {
		p.VEgoStopping = *aux.VEgoStopping
	}
	if aux.AccelMin != nil {
		p.AccelMin = *aux.AccelMin
	}
	if aux.AccelMax != nil {
		p.AccelMax = *aux.AccelMax
	}

	if len(aux.Kinem) == 0 {
		return nil
	}

	var disc kinematicsDisc
	if err := json.Unmarshal(aux.Kinem, &disc); err != nil {
		return fmt.Errorf("vehicle %q: reading kinematics model discriminator: %w", p.Name, err)
	}

	switch disc.Model {
	case kinematics.PointMassModelName, "":
		var k kinematics.PointMass
		if err := json.Unmarshal(aux.Kinem, &k); err != nil {
			return fmt.Errorf("vehicle %q: parsing point mass kinematics: %w", p.Name, err)
		}
		p.Kinem = k
	case kinematics.FirstOrderLagModelName:
		var k kinematics.FirstOrderLag
		if err := json.Unmarshal(aux.Kinem, &k); err != nil {
			return fmt.Errorf("vehicle %q: parsing first order lag kinematics: %w", p.Name, err)
		}
		if k.Tau < 0 {
			return fmt.Errorf("vehicle %q: kinematics tau must be >= 0, got %v", p.Name, k.Tau)
		}
		p.Kinem = k
	default:
		return fmt.Errorf("vehicle %q: unknown kinematics model %q", p.Name, disc.Model)
	}
	return nil
}

// Limits returns the actuator acceleration limits. They do not depend on speed
// for the vehicles modelled here.
func (p Params) Limits() profile.AccelLimits {
	return profile.AccelLimits{Min: p.AccelMin, Max: p.AccelMax}
}

// CarState is the sampled vehicle state for one tick.
type CarState struct {
	VEgo         float64 `json:"v_ego"` // m/s
	AEgo         float64 `json:"a_ego"` // m/s²
	BrakePressed bool    `json:"brake_pressed"`
}

// Inputs assembles the executor inputs for one tick.
func (p Params) Inputs(active bool, cs CarState) profile.Inputs {
	return profile.Inputs{
		Active:       active,
		BrakePressed: cs.BrakePressed,
		VEgo:         cs.VEgo,
		VEgoStopping: p.VEgoStopping,
		Limits:       p.Limits(),
	}
}
