package seq

import (
	"fmt"
	"math"
	"strings"
)

// InstrType identifies an instruction variant.
type InstrType int

const (
	// InstrConst holds a constant level for the whole interval.
	InstrConst InstrType = iota

	// InstrSine produces amplitude*sin(2*pi*freq*t + phase) + offset.
	InstrSine

	// InstrLinRamp interpolates linearly between two values over a time window.
	InstrLinRamp
)

// String returns the canonical lowercase name used in sequence documents.
func (t InstrType) String() string {
	switch t {
	case InstrConst:
		return "const"
	case InstrSine:
		return "sine"
	case InstrLinRamp:
		return "linramp"
	default:
		return fmt.Sprintf("InstrType(%d)", int(t))
	}
}

// ParseInstrType maps a document name to an InstrType.
func ParseInstrType(name string) (InstrType, bool) {
	switch name {
	case "const":
		return InstrConst, true
	case "sine":
		return InstrSine, true
	case "linramp":
		return InstrLinRamp, true
	default:
		return 0, false
	}
}

// Arg is a single named instruction argument.
type Arg struct {
	Name  string
	Value float64
}

// InstrArgs is an ordered list of named arguments. Order is cosmetic only
// (it is preserved for display); lookups are by name.
type InstrArgs []Arg

// Get returns the value for name, or (0, false) if absent.
func (a InstrArgs) Get(name string) (float64, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return 0, false
}

// getOr returns the value for name, or def if absent.
func (a InstrArgs) getOr(name string, def float64) float64 {
	if v, ok := a.Get(name); ok {
		return v
	}
	return def
}

// constParams holds the resolved parameters of a const instruction.
type constParams struct {
	Value float64
}

// sineParams holds the resolved parameters of a sine instruction.
// Amplitude, Offset and Phase use defaults when the author omits them.
type sineParams struct {
	Freq      float64
	Amplitude float64
	Offset    float64
	Phase     float64
}

// linRampParams holds the resolved parameters of a linear ramp.
type linRampParams struct {
	StartVal  float64
	EndVal    float64
	StartTime float64
	EndTime   float64
}

// Instruction is an immutable analytic instruction: a type plus its fully
// resolved parameters. All required-key and degenerate-parameter checks happen
// here, exactly once; evaluation never fails and never looks keys up again.
type Instruction struct {
	typ  InstrType
	args InstrArgs // as authored, for display and fingerprinting

	konst constParams
	sine  sineParams
	ramp  linRampParams
}

// Required and optional argument names per instruction type.
// Defaults apply to optional arguments only.
var (
	constRequired   = []string{"value"}
	sineRequired    = []string{"freq"}
	linRampRequired = []string{"start_val", "end_val", "start_time", "end_time"}
)

const (
	defaultSineAmplitude = 1.0
	defaultSineOffset    = 0.0
	defaultSinePhase     = 0.0
)

// NewInstruction constructs an Instruction, validating args exactly once.
//
// Returns MISSING_ARGUMENT when a required key is absent and DEGENERATE_RAMP
// when a linear ramp has start_time == end_time (or a non-finite time window).
// Optional keys omitted by the author resolve to their defaults here; the
// evaluator reads only the resolved typed parameters.
func NewInstruction(typ InstrType, args InstrArgs) (Instruction, error) {
	var required []string
	switch typ {
	case InstrConst:
		required = constRequired
	case InstrSine:
		required = sineRequired
	case InstrLinRamp:
		required = linRampRequired
	default:
		return Instruction{}, &ConstructionError{
			Code:    ErrCodeMissingArgument,
			Message: fmt.Sprintf("unknown instruction type %d", int(typ)),
		}
	}
	for _, key := range required {
		if _, ok := args.Get(key); !ok {
			return Instruction{}, newMissingArgument(typ, key)
		}
	}

	in := Instruction{typ: typ, args: args}
	switch typ {
	case InstrConst:
		in.konst = constParams{Value: args.getOr("value", 0)}
	case InstrSine:
		in.sine = sineParams{
			Freq:      args.getOr("freq", 0),
			Amplitude: args.getOr("amplitude", defaultSineAmplitude),
			Offset:    args.getOr("offset", defaultSineOffset),
			Phase:     args.getOr("phase", defaultSinePhase),
		}
	case InstrLinRamp:
		in.ramp = linRampParams{
			StartVal:  args.getOr("start_val", 0),
			EndVal:    args.getOr("end_val", 0),
			StartTime: args.getOr("start_time", 0),
			EndTime:   args.getOr("end_time", 0),
		}
		span := in.ramp.EndTime - in.ramp.StartTime
		if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
			return Instruction{}, &ConstructionError{
				Code: ErrCodeDegenerateRamp,
				Message: fmt.Sprintf(
					"linramp time window [%v, %v] has zero or non-finite span",
					in.ramp.StartTime, in.ramp.EndTime),
				Instr: typ.String(),
			}
		}
	}
	return in, nil
}

// NewConst builds a constant-level instruction.
func NewConst(value float64) Instruction {
	in, err := NewInstruction(InstrConst, InstrArgs{{Name: "value", Value: value}})
	if err != nil {
		// Unreachable: the single required key is always present.
		panic(err)
	}
	return in
}

// NewSine builds a sine instruction. Optional parameters are passed as
// pointers: nil means "use the default" and keeps the key out of the authored
// argument list, so fingerprints distinguish explicit values from defaults.
func NewSine(freq float64, amplitude, phase, offset *float64) Instruction {
	args := InstrArgs{{Name: "freq", Value: freq}}
	for _, opt := range []struct {
		name string
		val  *float64
	}{
		{"amplitude", amplitude},
		{"phase", phase},
		{"offset", offset},
	} {
		if opt.val != nil {
			args = append(args, Arg{Name: opt.name, Value: *opt.val})
		}
	}
	in, err := NewInstruction(InstrSine, args)
	if err != nil {
		panic(err)
	}
	return in
}

// NewLinRamp builds a linear ramp from startVal at startTime to endVal at
// endTime. Returns DEGENERATE_RAMP when startTime == endTime.
func NewLinRamp(startVal, endVal, startTime, endTime float64) (Instruction, error) {
	return NewInstruction(InstrLinRamp, InstrArgs{
		{Name: "start_val", Value: startVal},
		{Name: "end_val", Value: endVal},
		{Name: "start_time", Value: startTime},
		{Name: "end_time", Value: endTime},
	})
}

// Type returns the instruction variant.
func (in Instruction) Type() InstrType { return in.typ }

// Args returns the authored arguments (defaults for omitted optional keys are
// not materialized here).
func (in Instruction) Args() InstrArgs { return in.args }

// String renders the instruction as "[type, {k: v, ...}]" for diagnostics.
func (in Instruction) String() string {
	parts := make([]string, len(in.args))
	for i, arg := range in.args {
		parts[i] = fmt.Sprintf("%s: %v", arg.Name, arg.Value)
	}
	return fmt.Sprintf("[%s, {%s}]", in.typ, strings.Join(parts, ", "))
}
