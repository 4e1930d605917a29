package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden files pin the exact canonical bytes of the compile output.
// Regenerate with: go test ./internal/harness -update
func TestGoldenScenarios(t *testing.T) {
	for _, name := range []string{
		"const_gap_default",
		"retain_bridges_gap",
		"linramp_sweep",
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, loadScenario(t, name)))
		})
	}
}

func TestGoldenSkipsExpectedError(t *testing.T) {
	// No golden fixture exists for this scenario; RunWithGolden must not
	// try to compare one when there are no samples.
	require.NoError(t, RunWithGolden(t, loadScenario(t, "overlap_rejected")))
}
