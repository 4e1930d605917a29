package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/waveline/waveline/internal/seq"
)

// Compile materializes one channel's dense sample array.
//
// records is the unordered collection of placements for the channel, length
// the channel's total tick count, def the channel's idle level, and times the
// per-tick physical time array (len(times) must be at least length; tick i is
// evaluated at times[i]).
//
// The sweep orders records by start tick (stable: records sharing a start
// tick keep their insertion order, which makes the inevitable overlap error
// deterministic), then walks them once, carrying the next unwritten tick and
// the value owed to idle gaps. Gaps before a record and the tail after the
// last record are filled with the carry value: the last sample the previous
// record produced when it asked to retain, the channel default otherwise.
//
// An open-ended record plays until the next edge: its instruction is
// evaluated through to the following record's start tick, or the channel
// length when it is last. Its effective end stays start+1 and bounds only
// the overlap check, so the next record may begin anywhere after the open
// record's own tick.
//
// An empty record set is not an error: the whole channel is filled with def.
func Compile(records []seq.IntervalRecord, length uint64, def float64, times []float64) ([]float64, error) {
	if uint64(len(times)) < length {
		return nil, &CompileError{
			Code:    ErrCodeTimeMismatch,
			Message: fmt.Sprintf("time array covers %d ticks, channel needs %d", len(times), length),
			EndTick: length,
		}
	}

	ordered := make([]seq.IntervalRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start() < ordered[j].Start()
	})

	out := make([]float64, length)
	var cursor uint64
	carry := def

	for i, rec := range ordered {
		start, effEnd := rec.Start(), rec.EffectiveEnd()
		if start < cursor {
			return nil, newOverlapError(rangeTicks{start, effEnd}, cursor)
		}
		if effEnd > length {
			return nil, &CompileError{
				Code:      ErrCodeOverlap,
				Message:   fmt.Sprintf("record extends past the channel's total length %d", length),
				StartTick: start,
				EndTick:   effEnd,
				PrevEnd:   length,
			}
		}

		// Idle gap before this record.
		fill(out[cursor:start], carry)

		evalEnd := effEnd
		if _, closed := rec.End(); !closed {
			// Open record: play until the next edge. A following record
			// that starts inside [start, start+1) still trips the overlap
			// check on the next iteration.
			evalEnd = length
			if i+1 < len(ordered) && ordered[i+1].Start() < length {
				evalEnd = ordered[i+1].Start()
			}
			if evalEnd < effEnd {
				evalEnd = effEnd
			}
		}

		rec.Instruction().EvalInto(times[start:evalEnd], out[start:evalEnd])

		cursor = evalEnd
		if rec.Retain() {
			carry = out[evalEnd-1]
		} else {
			carry = def
		}
	}

	// Tail after the last record.
	fill(out[cursor:], carry)

	return out, nil
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}

// CompiledChannel is one channel's compile output plus its content identity.
type CompiledChannel struct {
	Name        string
	Kind        seq.ChannelKind
	Samples     []float64
	Fingerprint string
}

// Result is the compile output for a whole sequence.
type Result struct {
	Sequence    string
	Fingerprint string // sequence definition fingerprint
	SampleRate  float64
	Length      uint64
	Channels    []CompiledChannel
}

// CompileChannel compiles one named channel, attributing any sweep error to
// the channel and fingerprinting the output.
func CompileChannel(ch seq.Channel, length uint64, times []float64) (CompiledChannel, error) {
	samples, err := Compile(ch.Records, length, ch.Default, times)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) {
			ce.Channel = ch.Name
		}
		return CompiledChannel{}, err
	}
	fp, err := seq.SampleFingerprint(ch.Name, samples)
	if err != nil {
		return CompiledChannel{}, fmt.Errorf("channel %s: %w", ch.Name, err)
	}
	return CompiledChannel{
		Name:        ch.Name,
		Kind:        ch.Kind,
		Samples:     samples,
		Fingerprint: fp,
	}, nil
}

// CompileSequence compiles every channel of a sequence against a shared
// per-tick time array. Channels are independent; this helper runs them
// sequentially in document order, which keeps results deterministic. Callers
// needing parallelism compile channels individually (see internal/stream).
func CompileSequence(s *seq.Sequence, times []float64) (*Result, error) {
	fp, err := s.Fingerprint()
	if err != nil {
		return nil, err
	}
	res := &Result{
		Sequence:    s.Name,
		Fingerprint: fp,
		SampleRate:  s.SampleRate,
		Length:      s.Length,
		Channels:    make([]CompiledChannel, 0, len(s.Channels)),
	}
	for _, ch := range s.Channels {
		compiled, err := CompileChannel(ch, s.Length, times)
		if err != nil {
			return nil, err
		}
		res.Channels = append(res.Channels, compiled)
	}
	return res, nil
}

// Channel returns the named compiled channel, or nil if absent.
func (r *Result) Channel(name string) *CompiledChannel {
	for i := range r.Channels {
		if r.Channels[i].Name == name {
			return &r.Channels[i]
		}
	}
	return nil
}
