package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Stage is one step of a plan: hold Accel (m/s²) for Duration (s).
type Stage struct {
	Accel    float64 `json:"accel"`    // m/s²
	Duration float64 `json:"duration"` // seconds
}

// UnmarshalJSON accepts either {"accel": a, "duration": d} or an [a, d] pair.
// Objects must carry both keys and nothing else.
func (s *Stage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return fmt.Errorf("decoding stage pair: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("stage pair must be [accel, duration], got %d values", len(pair))
		}
		*s = Stage{Accel: pair[0], Duration: pair[1]}
		return nil
	}

	var obj struct {
		Accel    *float64 `json:"accel"`
		Duration *float64 `json:"duration"`
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("decoding stage: %w", err)
	}
	if obj.Accel == nil || obj.Duration == nil {
		return errors.New("stage needs both accel and duration")
	}
	*s = Stage{Accel: *obj.Accel, Duration: *obj.Duration}
	return nil
}

// Plan is the ordered list of stages executed by an Executor.
type Plan []Stage

func (p Plan) durations() []float64 {
	d := make([]float64, len(p))
	for i, s := range p {
		d[i] = s.Duration
	}
	return d
}

// TotalDuration returns the summed duration of every stage in seconds.
func (p Plan) TotalDuration() float64 {
	return floats.Sum(p.durations())
}

// ScheduleEntry is a plan stage expressed as the time, measured from Start,
// at which it ends.
type ScheduleEntry struct {
	Accel   float64 `json:"accel"`    // m/s²
	EndTime float64 `json:"end_time"` // seconds since start
}

// BuildSchedule converts stage durations into cumulative end times.
// EndTime[i] is the sum of Duration[0..i].
func BuildSchedule(p Plan) []ScheduleEntry {
	if len(p) == 0 {
		return nil
	}
	ends := floats.CumSum(make([]float64, len(p)), p.durations())

	schedule := make([]ScheduleEntry, len(p))
	for i, s := range p {
		schedule[i] = ScheduleEntry{Accel: s.Accel, EndTime: ends[i]}
	}
	return schedule
}
