package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/cxd309/accel-profile/internal/profile"
)

func TestCollector_ObserveTick(t *testing.T) {
	c := New(prometheus.NewRegistry())

	running := profile.Snapshot{State: profile.StateTracking, Stage: 0, Stages: 3, Running: true, LastOutput: 2}
	advanced := profile.Snapshot{State: profile.StateTracking, Stage: 1, Stages: 3, Running: true, LastOutput: 0}
	off := profile.Snapshot{State: profile.StateOff, Stage: 3, Stages: 3}

	c.ObserveStart("r1")
	c.ObserveTick("r1", running, running)
	c.ObserveTick("r1", running, advanced)
	c.ObserveTick("r1", advanced, off)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StartsTotal.WithLabelValues("r1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.TicksTotal.WithLabelValues("r1", "tracking")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TicksTotal.WithLabelValues("r1", "off")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StageChanges.WithLabelValues("r1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StopsTotal.WithLabelValues("r1", "disengaged")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.CurrentStage.WithLabelValues("r1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.Running.WithLabelValues("r1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ControlState.WithLabelValues("r1", "off")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ControlState.WithLabelValues("r1", "tracking")))
}

func TestCollector_ExhaustedStop(t *testing.T) {
	c := New(prometheus.NewRegistry())

	last := profile.Snapshot{State: profile.StateTracking, Stage: 2, Stages: 3, Running: true}
	done := profile.Snapshot{State: profile.StateTracking, Stage: 3, Stages: 3}
	c.ObserveTick("r2", last, done)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StopsTotal.WithLabelValues("r2", "exhausted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.StageChanges.WithLabelValues("r2")))
}
