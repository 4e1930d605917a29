package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstructionRequiredArgs(t *testing.T) {
	tests := []struct {
		name    string
		typ     InstrType
		args    InstrArgs
		wantArg string // expected missing arg, empty means construction succeeds
	}{
		{"const_ok", InstrConst, InstrArgs{{Name: "value", Value: 1.0}}, ""},
		{"const_missing_value", InstrConst, InstrArgs{}, "value"},
		{"sine_ok_minimal", InstrSine, InstrArgs{{Name: "freq", Value: 10.0}}, ""},
		{"sine_missing_freq", InstrSine, InstrArgs{{Name: "amplitude", Value: 2.0}}, "freq"},
		{"linramp_missing_end_val", InstrLinRamp, InstrArgs{
			{Name: "start_val", Value: 0},
			{Name: "start_time", Value: 0},
			{Name: "end_time", Value: 1},
		}, "end_val"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstruction(tt.typ, tt.args)
			if tt.wantArg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsMissingArgument(err))
			var ce *ConstructionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantArg, ce.Arg)
		})
	}
}

func TestNewInstructionValidatesOnce(t *testing.T) {
	// An instruction that constructed successfully never fails later:
	// evaluation reads only the resolved typed parameters.
	in, err := NewInstruction(InstrSine, InstrArgs{{Name: "freq", Value: 1.0}})
	require.NoError(t, err)

	// Defaults were resolved at construction.
	assert.Equal(t, 1.0, in.sine.Amplitude)
	assert.Equal(t, 0.0, in.sine.Offset)
	assert.Equal(t, 0.0, in.sine.Phase)

	// Authored args still exclude the omitted optional keys.
	_, ok := in.Args().Get("amplitude")
	assert.False(t, ok)
}

func TestNewLinRampDegenerate(t *testing.T) {
	_, err := NewLinRamp(0, 10, 2.5, 2.5)
	require.Error(t, err)
	assert.True(t, IsDegenerateRamp(err))

	// A valid window constructs fine.
	_, err = NewLinRamp(0, 10, 0, 1)
	require.NoError(t, err)
}

func TestNewSineOptionalArgs(t *testing.T) {
	amp := 3.0
	in := NewSine(5.0, &amp, nil, nil)

	v, ok := in.Args().Get("amplitude")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	// Omitted options stay out of the authored list.
	_, ok = in.Args().Get("phase")
	assert.False(t, ok)
	_, ok = in.Args().Get("offset")
	assert.False(t, ok)
}

func TestInstrTypeRoundTrip(t *testing.T) {
	for _, typ := range []InstrType{InstrConst, InstrSine, InstrLinRamp} {
		parsed, ok := ParseInstrType(typ.String())
		require.True(t, ok, "parse %q", typ.String())
		assert.Equal(t, typ, parsed)
	}
	_, ok := ParseInstrType("square")
	assert.False(t, ok)
}

func TestInstructionString(t *testing.T) {
	in := NewConst(2.5)
	assert.Equal(t, "[const, {value: 2.5}]", in.String())
}
