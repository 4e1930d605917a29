// Package harness provides a conformance testing framework for the timeline
// compiler.
//
// Scenarios are YAML files that pair an inline sequence definition with
// expectations about its compiled samples (or about the error the compile
// must produce). The harness builds the sequence, compiles every channel
// against the sequence's sample clock, and evaluates the checks.
//
// Golden comparison serializes the compiled samples as canonical JSON and
// diffs them against fixtures under testdata/golden, so any change to the
// compile sweep's output is caught byte for byte.
package harness
