package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/accel-profile/internal/sim"
)

const simYAML = `
simulation_meta:
  simulation_id: cli
  run_time: 5
  time_step: 0.1
plan:
  - {accel: 2.0, duration: 1.0}
  - {accel: 0.0, duration: 2.0}
  - {accel: -1.0, duration: 1.5}
driver:
  brake:
    - {from: 4.0, to: 4.2}
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, stdin, args...)
	return out, err
}

func executeWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSim_YAMLFromStdin(t *testing.T) {
	out, err := execute(t, simYAML, "sim", "--format", "yaml", "--log-level", "error")
	require.NoError(t, err)

	var log sim.SimulationLog
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "cli", log.Meta.SimulationID)
	assert.Len(t, log.Output, 51)
	assert.True(t, log.Summary.Disengaged)
	assert.False(t, log.Summary.Exhausted)
}

func TestSim_FileWithPlot(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "run.yaml")
	chartPath := filepath.Join(dir, "run.png")
	require.NoError(t, os.WriteFile(input, []byte(simYAML), 0o644))

	out, err := execute(t, "", "sim", input, "--pretty", "--plot", chartPath, "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n"))

	info, err := os.Stat(chartPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSim_InvalidInput(t *testing.T) {
	_, err := execute(t, `{"plan": []}`, "sim", "--log-level", "error")
	assert.Error(t, err)

	_, err = execute(t, `{oops`, "sim", "--log-level", "error")
	assert.ErrorIs(t, err, sim.ErrInvalidInput)
}

func TestSim_LogLevelFlag(t *testing.T) {
	_, stderr, err := executeWithStderr(t, simYAML, "sim", "--format", "yaml", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"message":"stage advanced"`)
	assert.Contains(t, stderr, `"level":"debug"`)

	_, stderr, err = executeWithStderr(t, simYAML, "sim", "--format", "yaml", "--log-level", "warn")
	require.NoError(t, err)
	assert.NotContains(t, stderr, `"message":"profile started"`)

	_, stderr, err = executeWithStderr(t, simYAML, "sim", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"message":"profile started"`)
	assert.NotContains(t, stderr, `"message":"stage advanced"`)
}

func TestSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"launch","stages":[[2,1],[0,2],[-1,1.5]]}`), 0o644))

	out, err := execute(t, "", "schedule", path)
	require.NoError(t, err)
	assert.Contains(t, out, "plan: launch")
	assert.Contains(t, out, "4.50")

	out, err = execute(t, "", "schedule", path, "--json")
	require.NoError(t, err)
	var entries []map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, 3.0, entries[1]["end_time"])
}

func TestSchedule_MissingFile(t *testing.T) {
	_, err := execute(t, "", "schedule", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
