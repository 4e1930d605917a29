package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntervalRecordMinimumLength(t *testing.T) {
	in := NewConst(1.0)

	tests := []struct {
		name    string
		start   uint64
		end     EndSpec
		wantErr bool
	}{
		{"one_tick", 0, ClosedEnd(1, false), false},
		{"longer", 5, ClosedEnd(10, true), false},
		{"zero_length", 5, ClosedEnd(5, true), true},
		{"end_before_start", 5, ClosedEnd(3, false), true},
		{"open_always_valid", 5, OpenEnd(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIntervalRecord(tt.start, tt.end, in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidInterval(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIntervalRecordAccessors(t *testing.T) {
	in := NewConst(1.0)

	closed, err := NewIntervalRecord(2, ClosedEnd(7, true), in)
	require.NoError(t, err)
	end, ok := closed.End()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), end)
	assert.Equal(t, uint64(7), closed.EffectiveEnd())
	dur, ok := closed.Duration()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), dur)
	assert.True(t, closed.Retain())

	noRetain, err := NewIntervalRecord(2, ClosedEnd(7, false), in)
	require.NoError(t, err)
	assert.False(t, noRetain.Retain())
}

func TestOpenRecordEffectiveEnd(t *testing.T) {
	in := NewConst(1.0)
	open, err := NewIntervalRecord(4, OpenEnd(), in)
	require.NoError(t, err)

	// Independent of any channel length: an open record owns its start tick.
	_, ok := open.End()
	assert.False(t, ok)
	assert.Equal(t, uint64(5), open.EffectiveEnd())
	_, ok = open.Duration()
	assert.False(t, ok)

	// Retain never applies to an open record.
	assert.False(t, open.Retain())
}

func TestInvalidIntervalReportsTicks(t *testing.T) {
	_, err := NewIntervalRecord(5, ClosedEnd(5, true), NewConst(0))
	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, uint64(5), ce.StartTick)
	assert.Equal(t, uint64(5), ce.EndTick)
	assert.Contains(t, ce.Error(), "INVALID_INTERVAL")
}
