package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRunPassingScenario(t *testing.T) {
	s := loadScenario(t, "const_gap_default")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	require.NotNil(t, result.Compiled)
	ch := result.Compiled.Channel("ao0")
	require.NotNil(t, ch)
	assert.Equal(t, []float64{3, 3, 3, 3, 3, 0, 0, 0}, ch.Samples)
}

func TestRunRetainScenario(t *testing.T) {
	s := loadScenario(t, "retain_bridges_gap")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	ch := result.Compiled.Channel("ao0")
	require.NotNil(t, ch)
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 1, 1}, ch.Samples)
}

func TestRunLinRampScenario(t *testing.T) {
	s := loadScenario(t, "linramp_sweep")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunExpectedError(t *testing.T) {
	s := loadScenario(t, "overlap_rejected")

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Compiled)
}

func TestRunExpectedErrorUsesSweepCode(t *testing.T) {
	// The static pre-check reports overlaps under its own validation code;
	// the scenario names the sweep's code and must still match.
	s := loadScenario(t, "overlap_rejected")
	require.Equal(t, "OVERLAP", s.ExpectError)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunExpectedValidationCode(t *testing.T) {
	// A duplicate channel name compiles cleanly per channel, so only the
	// validation pass can reject it; its code is still matchable.
	s := loadScenario(t, "const_gap_default")
	s.Checks = nil
	s.ExpectError = "E112"
	s.Sequence.Channels = append(s.Sequence.Channels, s.Sequence.Channels[0])

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunExpectedErrorButCompileSucceeds(t *testing.T) {
	s := loadScenario(t, "const_gap_default")
	s.ExpectError = "OVERLAP"
	s.Checks = nil

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "compile succeeded")
}

func TestRunExpectedErrorCodeMismatch(t *testing.T) {
	s := loadScenario(t, "overlap_rejected")
	s.ExpectError = "TIME_MISMATCH"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error TIME_MISMATCH, got OVERLAP")
}

func TestRunConstructionErrorCode(t *testing.T) {
	s := loadScenario(t, "const_gap_default")
	s.Checks = nil
	s.ExpectError = "MISSING_ARGUMENT"
	s.Sequence.Channels[0].Records[0].Instr.Args = map[string]float64{"amplitude": 1}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunFailingCheckReportsExpectedVsActual(t *testing.T) {
	s := loadScenario(t, "const_gap_default")
	s.Checks = []Check{
		{Type: CheckAt, Channel: "ao0", Tick: 0, Value: 99},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: samples[0] == 99")
	assert.Contains(t, result.Errors[0], "Actual: samples[0] == 3")
}

func TestRunInvalidSequenceIsExecutionError(t *testing.T) {
	s := loadScenario(t, "const_gap_default")
	s.Sequence.Channels[0].Kind = "lasers"

	_, err := Run(s)
	require.Error(t, err)
}
