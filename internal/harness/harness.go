package harness

import (
	"errors"
	"fmt"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/seq"
	"github.com/waveline/waveline/internal/stream"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// Compiled holds the compile output when the compile succeeded.
	// Nil for expect_error scenarios.
	Compiled *compiler.Result `json:"-"`

	// Errors contains check failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError adds a check failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the sequence from the inline document
// 2. Compile every channel against the sequence's sample clock
// 3. For expect_error scenarios, match the failure's error code
// 4. Otherwise evaluate every check against the compiled samples
//
// Run returns an error only when the scenario itself cannot be executed;
// check failures are reported through the result.
func Run(scenario *Scenario) (*Result, error) {
	result := &Result{Pass: true, Errors: []string{}}

	compiled, err := compileScenario(scenario)
	if scenario.ExpectError != "" {
		if err == nil {
			result.AddError(fmt.Sprintf(
				"expected error %s, but compile succeeded", scenario.ExpectError))
			return result, nil
		}
		if code := errorCode(err); code != scenario.ExpectError {
			result.AddError(fmt.Sprintf(
				"expected error %s, got %s (%v)", scenario.ExpectError, code, err))
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result.Compiled = compiled
	for i, check := range scenario.Checks {
		if err := evaluateCheck(compiled, check); err != nil {
			result.AddError(fmt.Sprintf("checks[%d]: %v", i, err))
		}
	}
	return result, nil
}

// compileScenario builds and compiles the scenario's sequence.
//
// For expect_error scenarios the sweep runs even when static validation
// already flagged the document: the scenario targets the sweep's own error
// code (OVERLAP, not E114), so the sweep's failure takes precedence and
// validation findings only surface for defects the sweep cannot see.
func compileScenario(scenario *Scenario) (*compiler.Result, error) {
	s, err := scenario.Sequence.Build()
	if err != nil {
		return nil, err
	}
	verrs := compiler.Validate(s)
	if len(verrs) > 0 && scenario.ExpectError == "" {
		return nil, verrs[0]
	}

	clock, err := stream.NewClock(s.SampleRate)
	if err != nil {
		return nil, err
	}
	res, err := compiler.CompileSequence(s, clock.Times(s.Length))
	if err != nil {
		return nil, err
	}
	if len(verrs) > 0 {
		return nil, verrs[0]
	}
	return res, nil
}

// errorCode extracts the machine-readable code from a compile, construction,
// or validation error. Unknown errors report as UNKNOWN.
func errorCode(err error) string {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	var cons *seq.ConstructionError
	if errors.As(err, &cons) {
		return string(cons.Code)
	}
	var ve compiler.ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return "UNKNOWN"
}
