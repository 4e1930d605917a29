package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/waveline/waveline/internal/seq"
)

// DocError represents a sequence document decoding error with source position.
type DocError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error // underlying construction error, when one caused this
}

func (e *DocError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *DocError) Unwrap() error {
	return e.Err
}

// DecodeSequence parses a CUE document value into a sequence.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value is the root of a sequence document:
//
//	sequence: {name: "demo", sample_rate: 1000.0, length: 64}
//	channel: ao0: {
//		kind:    "analog"
//		default: 0.0
//		records: [{start: 0, end: 32, retain: true,
//			instr: {type: "const", args: {value: 1.0}}}]
//	}
//
// Instruction and record construction runs through seq's fail-fast
// constructors, so missing arguments, degenerate ramps and invalid intervals
// are rejected here with document positions attached.
func DecodeSequence(v cue.Value) (*seq.Sequence, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	out := &seq.Sequence{}

	seqVal := v.LookupPath(cue.ParsePath("sequence"))
	if !seqVal.Exists() {
		return nil, &DocError{
			Field:   "sequence",
			Message: "sequence block is required",
			Pos:     v.Pos(),
		}
	}

	var err error
	if out.Name, err = requiredString(seqVal, "name"); err != nil {
		return nil, err
	}
	if out.SampleRate, err = requiredFloat(seqVal, "sample_rate"); err != nil {
		return nil, err
	}
	lengthVal := seqVal.LookupPath(cue.ParsePath("length"))
	if !lengthVal.Exists() {
		return nil, &DocError{Field: "sequence.length", Message: "length is required", Pos: seqVal.Pos()}
	}
	length, err := lengthVal.Uint64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out.Length = length

	chVal := v.LookupPath(cue.ParsePath("channel"))
	if chVal.Exists() {
		iter, iterErr := chVal.Fields()
		if iterErr != nil {
			return nil, formatCUEError(iterErr)
		}
		for iter.Next() {
			ch, chErr := decodeChannel(iter.Label(), iter.Value())
			if chErr != nil {
				return nil, chErr
			}
			out.Channels = append(out.Channels, ch)
		}
	}

	return out, nil
}

// decodeChannel parses one channel block.
func decodeChannel(name string, v cue.Value) (seq.Channel, error) {
	ch := seq.Channel{Name: name, Kind: seq.KindAnalog}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if kindVal.Exists() {
		kind, err := kindVal.String()
		if err != nil {
			return ch, formatCUEError(err)
		}
		ch.Kind = seq.ChannelKind(kind)
	}

	defVal := v.LookupPath(cue.ParsePath("default"))
	if defVal.Exists() {
		def, err := defVal.Float64()
		if err != nil {
			return ch, formatCUEError(err)
		}
		ch.Default = def
	}

	recsVal := v.LookupPath(cue.ParsePath("records"))
	if recsVal.Exists() {
		iter, err := recsVal.List()
		if err != nil {
			return ch, formatCUEError(err)
		}
		idx := 0
		for iter.Next() {
			rec, recErr := decodeRecord(fmt.Sprintf("channel.%s.records[%d]", name, idx), iter.Value())
			if recErr != nil {
				return ch, recErr
			}
			ch.Records = append(ch.Records, rec)
			idx++
		}
	}

	return ch, nil
}

// decodeRecord parses one placement: start tick, optional end/retain, and
// the bound instruction.
func decodeRecord(field string, v cue.Value) (seq.IntervalRecord, error) {
	var zero seq.IntervalRecord

	startVal := v.LookupPath(cue.ParsePath("start"))
	if !startVal.Exists() {
		return zero, &DocError{Field: field + ".start", Message: "start tick is required", Pos: v.Pos()}
	}
	start, err := startVal.Uint64()
	if err != nil {
		return zero, formatCUEError(err)
	}

	endSpec := seq.OpenEnd()
	endVal := v.LookupPath(cue.ParsePath("end"))
	if endVal.Exists() {
		end, endErr := endVal.Uint64()
		if endErr != nil {
			return zero, formatCUEError(endErr)
		}
		retain := false
		retainVal := v.LookupPath(cue.ParsePath("retain"))
		if retainVal.Exists() {
			if retain, endErr = retainVal.Bool(); endErr != nil {
				return zero, formatCUEError(endErr)
			}
		}
		endSpec = seq.ClosedEnd(end, retain)
	}

	instr, err := decodeInstruction(field+".instr", v.LookupPath(cue.ParsePath("instr")))
	if err != nil {
		return zero, err
	}

	rec, err := seq.NewIntervalRecord(start, endSpec, instr)
	if err != nil {
		return zero, &DocError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return rec, nil
}

// decodeInstruction parses an instruction block {type, args}, preserving the
// authored argument order.
func decodeInstruction(field string, v cue.Value) (seq.Instruction, error) {
	var zero seq.Instruction

	if !v.Exists() {
		return zero, &DocError{Field: field, Message: "instr block is required", Pos: v.Pos()}
	}

	typeName, err := requiredString(v, "type")
	if err != nil {
		return zero, err
	}
	typ, ok := seq.ParseInstrType(typeName)
	if !ok {
		return zero, &DocError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown instruction type %q (want const, sine or linramp)", typeName),
			Pos:     v.Pos(),
		}
	}

	var args seq.InstrArgs
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		iter, iterErr := argsVal.Fields()
		if iterErr != nil {
			return zero, formatCUEError(iterErr)
		}
		for iter.Next() {
			val, valErr := iter.Value().Float64()
			if valErr != nil {
				return zero, formatCUEError(valErr)
			}
			args = append(args, seq.Arg{Name: iter.Label(), Value: val})
		}
	}

	instr, err := seq.NewInstruction(typ, args)
	if err != nil {
		return zero, &DocError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return instr, nil
}

func requiredString(v cue.Value, key string) (string, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return "", &DocError{Field: key, Message: key + " is required", Pos: v.Pos()}
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredFloat(v cue.Value, key string) (float64, error) {
	val := v.LookupPath(cue.ParsePath(key))
	if !val.Exists() {
		return 0, &DocError{Field: key, Message: key + " is required", Pos: v.Pos()}
	}
	f, err := val.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &DocError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
