package harness

import (
	"fmt"
	"math"

	"github.com/waveline/waveline/internal/compiler"
)

// sampleTolerance bounds the absolute difference allowed when comparing
// samples against expected values. The compile itself is bit-deterministic;
// the tolerance only absorbs rounding in hand-written expected values.
const sampleTolerance = 1e-9

// CheckError is returned when a check fails.
// It includes expected and actual values to help debug the failure.
type CheckError struct {
	Type     string // Check type for categorization
	Channel  string // Channel under test
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("check failed: %s on %s\n  Expected: %s\n  Actual: %s",
		e.Type, e.Channel, e.Expected, e.Actual)
}

// evaluateCheck runs one check against the compiled result.
func evaluateCheck(res *compiler.Result, check Check) error {
	ch := res.Channel(check.Channel)
	if ch == nil {
		return &CheckError{
			Type:     check.Type,
			Channel:  check.Channel,
			Expected: "channel present in compile output",
			Actual:   "not found",
		}
	}

	switch check.Type {
	case CheckLength:
		return checkLength(ch, check)
	case CheckAt:
		return checkAt(ch, check)
	case CheckAllEqual:
		return checkAllEqual(ch, check)
	case CheckRangeEqual:
		return checkRangeEqual(ch, check)
	case CheckLinearBetween:
		return checkLinearBetween(ch, check)
	default:
		// Unreachable after scenario validation.
		return fmt.Errorf("unknown check type %q", check.Type)
	}
}

func checkLength(ch *compiler.CompiledChannel, check Check) error {
	if uint64(len(ch.Samples)) != check.Count {
		return &CheckError{
			Type:     CheckLength,
			Channel:  check.Channel,
			Expected: fmt.Sprintf("%d samples", check.Count),
			Actual:   fmt.Sprintf("%d samples", len(ch.Samples)),
		}
	}
	return nil
}

func checkAt(ch *compiler.CompiledChannel, check Check) error {
	if check.Tick >= uint64(len(ch.Samples)) {
		return &CheckError{
			Type:     CheckAt,
			Channel:  check.Channel,
			Expected: fmt.Sprintf("sample at tick %d", check.Tick),
			Actual:   fmt.Sprintf("channel has only %d samples", len(ch.Samples)),
		}
	}
	if got := ch.Samples[check.Tick]; !closeEnough(got, check.Value) {
		return &CheckError{
			Type:     CheckAt,
			Channel:  check.Channel,
			Expected: fmt.Sprintf("samples[%d] == %v", check.Tick, check.Value),
			Actual:   fmt.Sprintf("samples[%d] == %v", check.Tick, got),
		}
	}
	return nil
}

func checkAllEqual(ch *compiler.CompiledChannel, check Check) error {
	for i, got := range ch.Samples {
		if !closeEnough(got, check.Value) {
			return &CheckError{
				Type:     CheckAllEqual,
				Channel:  check.Channel,
				Expected: fmt.Sprintf("every sample == %v", check.Value),
				Actual:   fmt.Sprintf("samples[%d] == %v", i, got),
			}
		}
	}
	return nil
}

func checkRangeEqual(ch *compiler.CompiledChannel, check Check) error {
	if err := boundRange(ch, check, CheckRangeEqual); err != nil {
		return err
	}
	for i := check.From; i < check.To; i++ {
		if got := ch.Samples[i]; !closeEnough(got, check.Value) {
			return &CheckError{
				Type:     CheckRangeEqual,
				Channel:  check.Channel,
				Expected: fmt.Sprintf("samples[%d:%d] all == %v", check.From, check.To, check.Value),
				Actual:   fmt.Sprintf("samples[%d] == %v", i, got),
			}
		}
	}
	return nil
}

// checkLinearBetween verifies samples in [From, To) lie on the straight line
// from StartValue at From to EndValue at the last tick of the range.
func checkLinearBetween(ch *compiler.CompiledChannel, check Check) error {
	if err := boundRange(ch, check, CheckLinearBetween); err != nil {
		return err
	}
	n := check.To - check.From
	for i := uint64(0); i < n; i++ {
		want := check.StartValue
		if n > 1 {
			frac := float64(i) / float64(n-1)
			want = check.StartValue + (check.EndValue-check.StartValue)*frac
		}
		if got := ch.Samples[check.From+i]; !closeEnough(got, want) {
			return &CheckError{
				Type:    CheckLinearBetween,
				Channel: check.Channel,
				Expected: fmt.Sprintf("samples[%d] == %v (linear %v..%v over [%d, %d))",
					check.From+i, want, check.StartValue, check.EndValue, check.From, check.To),
				Actual: fmt.Sprintf("samples[%d] == %v", check.From+i, got),
			}
		}
	}
	return nil
}

func boundRange(ch *compiler.CompiledChannel, check Check, typ string) error {
	if check.To > uint64(len(ch.Samples)) {
		return &CheckError{
			Type:     typ,
			Channel:  check.Channel,
			Expected: fmt.Sprintf("range [%d, %d) within channel", check.From, check.To),
			Actual:   fmt.Sprintf("channel has only %d samples", len(ch.Samples)),
		}
	}
	return nil
}

func closeEnough(got, want float64) bool {
	return math.Abs(got-want) <= sampleTolerance
}
