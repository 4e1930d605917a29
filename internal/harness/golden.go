package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/seq"
)

// SampleSnapshot captures a compile's full output for golden comparison.
// All fields use canonical JSON serialization, so snapshots are byte
// deterministic across runs and platforms.
type SampleSnapshot struct {
	ScenarioName string
	Result       *compiler.Result
}

// toCanonicalMap converts the snapshot to a map[string]any for
// seq.MarshalCanonical, which only handles maps, slices and primitives.
func (s *SampleSnapshot) toCanonicalMap() map[string]any {
	channels := make([]any, len(s.Result.Channels))
	for i, ch := range s.Result.Channels {
		channels[i] = map[string]any{
			"name":        ch.Name,
			"kind":        string(ch.Kind),
			"fingerprint": ch.Fingerprint,
			"samples":     ch.Samples,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"sequence":      s.Result.Sequence,
		"fingerprint":   s.Result.Fingerprint,
		"sample_rate":   s.Result.SampleRate,
		"length":        s.Result.Length,
		"channels":      channels,
	}
}

// RunWithGolden executes a scenario and compares the compiled samples
// against a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected compile output; any
// change to the sweep that alters samples shows up as a byte-level diff.
// Scenario checks still run first, so a snapshot never hides a failing check.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	if result.Compiled == nil {
		// expect_error scenarios have no samples to snapshot.
		return nil
	}

	return AssertGolden(t, scenario.Name, result.Compiled)
}

// AssertGolden compares a compile result against the named golden file.
func AssertGolden(t *testing.T, scenarioName string, res *compiler.Result) error {
	t.Helper()

	snapshot := SampleSnapshot{ScenarioName: scenarioName, Result: res}
	data, err := seq.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
