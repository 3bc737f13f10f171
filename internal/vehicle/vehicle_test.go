package vehicle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/accel-profile/internal/kinematics"
	"github.com/cxd309/accel-profile/internal/profile"
)

func TestParams_UnmarshalDefaults(t *testing.T) {
	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"name":"test"}`), &p))

	assert.Equal(t, "test", p.Name)
	assert.Equal(t, DefaultVEgoStopping, p.VEgoStopping)
	assert.Equal(t, profile.AccelLimits{Min: DefaultAccelMin, Max: DefaultAccelMax}, p.Limits())
	assert.Equal(t, kinematics.PointMass{}, p.Kinem)
}

func TestParams_UnmarshalModels(t *testing.T) {
	tests := []struct {
		name string
		json string
		want kinematics.Model
	}{
		{"point mass", `{"kinematics":{"model":"point_mass","v_max":30}}`, kinematics.PointMass{VMax: 30}},
		{"lag", `{"kinematics":{"model":"first_order_lag","tau":0.3}}`, kinematics.FirstOrderLag{Tau: 0.3}},
		{"no discriminator", `{"kinematics":{}}`, kinematics.PointMass{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Params
			require.NoError(t, json.Unmarshal([]byte(tt.json), &p))
			assert.Equal(t, tt.want, p.Kinem)
		})
	}
}

func TestParams_UnmarshalErrors(t *testing.T) {
	for _, in := range []string{
		`{"name":"x","kinematics":{"model":"warp"}}`,
		`{"name":"x","kinematics":{"model":"first_order_lag","tau":-1}}`,
		`{"name":"x","kinematics":"fast"}`,
	} {
		var p Params
		assert.Error(t, json.Unmarshal([]byte(in), &p), in)
	}
}

func TestParams_UnmarshalOverrides(t *testing.T) {
	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"v_ego_stopping":0.25,"accel_min":-2,"accel_max":1.5}`), &p))

	in := p.Inputs(true, CarState{VEgo: 3, BrakePressed: true})
	assert.Equal(t, profile.Inputs{
		Active:       true,
		BrakePressed: true,
		VEgo:         3,
		VEgoStopping: 0.25,
		Limits:       profile.AccelLimits{Min: -2, Max: 1.5},
	}, in)
}
