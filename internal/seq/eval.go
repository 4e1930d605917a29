package seq

import "math"

// EvalInto evaluates the instruction over the given time values and writes one
// sample per element into dst. The two slices must have equal length; times
// carries the physical time associated with each tick, supplied by the caller.
//
// Evaluation is pure and never fails: every parameter was resolved and
// validated at construction.
func (in Instruction) EvalInto(times []float64, dst []float64) {
	switch in.typ {
	case InstrConst:
		v := in.konst.Value
		for i := range dst {
			dst[i] = v
		}
	case InstrSine:
		p := in.sine
		for i, t := range times {
			dst[i] = p.Amplitude*math.Sin(2*math.Pi*p.Freq*t+p.Phase) + p.Offset
		}
	case InstrLinRamp:
		p := in.ramp
		slope := (p.EndVal - p.StartVal) / (p.EndTime - p.StartTime)
		for i, t := range times {
			dst[i] = p.StartVal + (t-p.StartTime)*slope
		}
	}
}

// Eval evaluates the instruction over the given time values into a fresh slice.
func (in Instruction) Eval(times []float64) []float64 {
	dst := make([]float64, len(times))
	in.EvalInto(times, dst)
	return dst
}

// EvalPoint evaluates the instruction at a single time value. Equivalent to
// Eval over a one-element slice.
func (in Instruction) EvalPoint(t float64) float64 {
	var dst [1]float64
	in.EvalInto([]float64{t}, dst[:])
	return dst[0]
}
