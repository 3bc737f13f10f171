package planfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/accel-profile/internal/profile"
)

const planJSON = `{
  "name": "launch",
  "stages": [
    {"accel": 2.0, "duration": 1.0},
    [0.0, 2.0],
    {"accel": -1.0, "duration": 1.5}
  ]
}`

const planYAML = `
name: launch
stages:
  - accel: 2.0
    duration: 1.0
  - [0.0, 2.0]
  - {accel: -1.0, duration: 1.5}
`

var wantPlan = profile.Plan{
	{Accel: 2.0, Duration: 1.0},
	{Accel: 0.0, Duration: 2.0},
	{Accel: -1.0, Duration: 1.5},
}

func TestParse_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := Parse([]byte(planJSON), FormatJSON)
	require.NoError(t, err)
	fromYAML, err := Parse([]byte(planYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "launch", fromJSON.Name)
	assert.Equal(t, wantPlan, fromJSON.Stages)
	assert.Equal(t, fromJSON, fromYAML)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"empty stages", `{"stages": []}`, FormatJSON},
		{"missing stages", `{"name": "x"}`, FormatJSON},
		{"empty yaml", ``, FormatYAML},
		{"unknown field", `{"stages": [[1, 1]], "speed": 3}`, FormatJSON},
		{"unknown stage field", `{"stages": [{"accel": 1, "duration": 1, "jerk": 2}]}`, FormatJSON},
		{"missing duration", `{"stages": [{"accel": 1}]}`, FormatJSON},
		{"short pair", `{"stages": [[1]]}`, FormatJSON},
		{"negative duration", `{"stages": [[1, -1]]}`, FormatJSON},
		{"bad yaml", "stages: [", FormatYAML},
		{"bad format", `{}`, Format("toml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyPlanSentinel(t *testing.T) {
	_, err := Parse([]byte(`{"stages": []}`), FormatJSON)
	assert.ErrorIs(t, err, profile.ErrEmptyPlan)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "plan.json")
	yamlPath := filepath.Join(dir, "plan.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(planJSON), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(planYAML), 0o644))

	for _, path := range []string{jsonPath, yamlPath} {
		doc, err := Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, wantPlan, doc.Stages)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "plan.txt"))
	assert.ErrorContains(t, err, "extension")

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "stat")
}
