package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		active       bool
		brake        bool
		vEgo         float64
		vEgoStopping float64
		lastAccel    float64
		want         ControlState
	}{
		{"inactive", false, false, 10, 0.5, 1, StateOff},
		{"brake pressed", true, true, 10, 0.5, 1, StateOff},
		{"inactive with brake", false, true, 0, 0.5, -1, StateOff},
		{"low speed braking", true, false, 0.2, 0.5, -0.5, StateStopping},
		{"low speed zero accel", true, false, 0.2, 0.5, 0, StateStopping},
		{"low speed accelerating", true, false, 0.2, 0.5, 0.1, StateTracking},
		{"at threshold", true, false, 0.5, 0.5, -1, StateTracking},
		{"cruising", true, false, 20, 0.5, 0, StateTracking},
		{"negative speed", true, false, -1, 0.5, -1, StateStopping},
		{"negative threshold", true, false, 0, -1, -1, StateTracking},
		{"huge accel", true, false, 0, 0.5, math.MaxFloat64, StateTracking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.active, tt.brake, tt.vEgo, tt.vEgoStopping, tt.lastAccel)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanTotalDuration(t *testing.T) {
	assert.Equal(t, 0.0, Plan{}.TotalDuration())
	assert.InDelta(t, 4.5, testPlan().TotalDuration(), 1e-12)
}
