package seq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linspace builds n evenly spaced time values over [lo, hi].
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

func TestEvalConst(t *testing.T) {
	in := NewConst(5.0)
	out := in.Eval(linspace(0, 1, 10))
	require.Len(t, out, 10)
	for i, v := range out {
		assert.Equal(t, 5.0, v, "sample %d", i)
	}
}

func TestEvalSineDefaults(t *testing.T) {
	// freq=1, defaults amplitude=1, phase=0, offset=0: sin(0) == 0.
	in := NewSine(1.0, nil, nil, nil)
	assert.Equal(t, 0.0, in.EvalPoint(0.0))

	// Quarter period peaks at amplitude.
	assert.InDelta(t, 1.0, in.EvalPoint(0.25), 1e-12)
}

func TestEvalSineAllParams(t *testing.T) {
	amp, phase, offset := 2.0, math.Pi/2, 1.0
	in := NewSine(1.0, &amp, &phase, &offset)
	// t=0: 2*sin(pi/2) + 1 = 3.
	assert.InDelta(t, 3.0, in.EvalPoint(0.0), 1e-12)
}

func TestEvalLinRamp(t *testing.T) {
	in, err := NewLinRamp(0.0, 10.0, 0.0, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 0.0, in.EvalPoint(0.0))
	assert.Equal(t, 10.0, in.EvalPoint(1.0))

	// Values between the endpoints are linear.
	times := linspace(0, 1, 11)
	out := in.Eval(times)
	for i, tv := range times {
		assert.InDelta(t, 10.0*tv, out[i], 1e-12, "t=%v", tv)
	}
}

func TestEvalLinRampDescending(t *testing.T) {
	in, err := NewLinRamp(4.0, -4.0, 1.0, 3.0)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, in.EvalPoint(1.0), 1e-12)
	assert.InDelta(t, 0.0, in.EvalPoint(2.0), 1e-12)
	assert.InDelta(t, -4.0, in.EvalPoint(3.0), 1e-12)
}

func TestEvalPointMatchesArrayEval(t *testing.T) {
	amp := 0.7
	instrs := []Instruction{
		NewConst(-2.5),
		NewSine(3.0, &amp, nil, nil),
		mustLinRamp(t, 1.0, 2.0, 0.0, 0.5),
	}
	times := linspace(0, 0.5, 7)
	for _, in := range instrs {
		arr := in.Eval(times)
		for i, tv := range times {
			assert.Equal(t, arr[i], in.EvalPoint(tv), "%s at t=%v", in, tv)
		}
	}
}

func TestEvalPure(t *testing.T) {
	in := NewSine(2.0, nil, nil, nil)
	times := linspace(0, 1, 100)
	first := in.Eval(times)
	second := in.Eval(times)
	assert.Equal(t, first, second)
}

func mustLinRamp(t *testing.T, startVal, endVal, startTime, endTime float64) Instruction {
	t.Helper()
	in, err := NewLinRamp(startVal, endVal, startTime, endTime)
	require.NoError(t, err)
	return in
}
