package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSequence(t *testing.T) *Sequence {
	t.Helper()
	rec, err := NewIntervalRecord(0, ClosedEnd(5, true), NewConst(3.0))
	require.NoError(t, err)
	return &Sequence{
		Name:       "test",
		SampleRate: 1000,
		Length:     8,
		Channels: []Channel{
			{Name: "ao0", Kind: KindAnalog, Default: 0, Records: []IntervalRecord{rec}},
		},
	}
}

func TestSequenceFingerprintDeterministic(t *testing.T) {
	s := testSequence(t)
	h1, err := s.Fingerprint()
	require.NoError(t, err)
	h2, err := s.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex SHA-256
}

func TestSequenceFingerprintSensitivity(t *testing.T) {
	a := testSequence(t)
	b := testSequence(t)
	b.Channels[0].Default = 1.0

	ha, err := a.Fingerprint()
	require.NoError(t, err)
	hb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestSequenceFingerprintIgnoresArgOrder(t *testing.T) {
	// Argument order is cosmetic; the canonical object encoding sorts keys.
	mk := func(args InstrArgs) *Sequence {
		in, err := NewInstruction(InstrSine, args)
		require.NoError(t, err)
		rec, err := NewIntervalRecord(0, OpenEnd(), in)
		require.NoError(t, err)
		return &Sequence{
			Name: "t", SampleRate: 1, Length: 4,
			Channels: []Channel{{Name: "ao0", Kind: KindAnalog, Records: []IntervalRecord{rec}}},
		}
	}

	h1, err := mk(InstrArgs{{Name: "freq", Value: 2}, {Name: "offset", Value: 1}}).Fingerprint()
	require.NoError(t, err)
	h2, err := mk(InstrArgs{{Name: "offset", Value: 1}, {Name: "freq", Value: 2}}).Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestSampleFingerprint(t *testing.T) {
	h1, err := SampleFingerprint("ao0", []float64{0, 1, 2})
	require.NoError(t, err)
	h2, err := SampleFingerprint("ao0", []float64{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := SampleFingerprint("ao1", []float64{0, 1, 2})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3, "channel name participates in identity")

	h4, err := SampleFingerprint("ao0", []float64{0, 1, 2.000001})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h4)
}

func TestChannelByName(t *testing.T) {
	s := testSequence(t)
	require.NotNil(t, s.ChannelByName("ao0"))
	assert.Nil(t, s.ChannelByName("missing"))
}
