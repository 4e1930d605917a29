package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/seq"
	"github.com/waveline/waveline/internal/stream"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSequence(t *testing.T) *seq.Sequence {
	t.Helper()
	rec, err := seq.NewIntervalRecord(0, seq.ClosedEnd(4, false), seq.NewConst(2.5))
	require.NoError(t, err)
	return &seq.Sequence{
		Name:       "warmup",
		SampleRate: 1000,
		Length:     8,
		Channels: []seq.Channel{
			{Name: "ao0", Kind: seq.KindAnalog, Default: 0, Records: []seq.IntervalRecord{rec}},
		},
	}
}

// runReport compiles the sequence and builds the report a Runner would store.
func runReport(t *testing.T, sq *seq.Sequence, token string) *stream.RunReport {
	t.Helper()
	clock, err := stream.NewClock(sq.SampleRate)
	require.NoError(t, err)
	res, err := compiler.CompileSequence(sq, clock.Times(sq.Length))
	require.NoError(t, err)

	report := &stream.RunReport{
		Token:       token,
		Sequence:    res.Sequence,
		Fingerprint: res.Fingerprint,
		SampleRate:  res.SampleRate,
		Length:      res.Length,
	}
	for _, ch := range res.Channels {
		report.Channels = append(report.Channels, stream.ChannelReport{
			Name:        ch.Name,
			Kind:        ch.Kind,
			Samples:     uint64(len(ch.Samples)),
			Fingerprint: ch.Fingerprint,
			First:       ch.Samples[0],
			Last:        ch.Samples[len(ch.Samples)-1],
		})
	}
	return report
}

func TestWriteAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	report := runReport(t, testSequence(t), "tok-1")
	require.NoError(t, s.WriteRun(ctx, report))

	got, err := s.GetRun(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, report.Token, got.Token)
	assert.Equal(t, report.Sequence, got.Sequence)
	assert.Equal(t, report.Fingerprint, got.Fingerprint)
	assert.Equal(t, report.SampleRate, got.SampleRate)
	assert.Equal(t, report.Length, got.Length)
	require.Len(t, got.Channels, 1)
	assert.Equal(t, report.Channels[0], got.Channels[0])
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestWriteRunIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	report := runReport(t, testSequence(t), "tok-1")
	require.NoError(t, s.WriteRun(ctx, report))
	require.NoError(t, s.WriteRun(ctx, report))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestListRunsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sq := testSequence(t)

	for _, token := range []string{"tok-a", "tok-b", "tok-c"} {
		require.NoError(t, s.WriteRun(ctx, runReport(t, sq, token)))
	}

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Most recent first.
	assert.Equal(t, "tok-c", runs[0].Token)
	assert.Equal(t, "tok-b", runs[1].Token)
	assert.Equal(t, "tok-a", runs[2].Token)
}

func TestListRunsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sq := testSequence(t)

	for _, token := range []string{"tok-a", "tok-b", "tok-c"} {
		require.NoError(t, s.WriteRun(ctx, runReport(t, sq, token)))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "tok-c", runs[0].Token)
}

func TestListRunsEmpty(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestVerifyRunMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sq := testSequence(t)

	require.NoError(t, s.WriteRun(ctx, runReport(t, sq, "tok-1")))

	v, err := s.VerifyRun(ctx, "tok-1", sq)
	require.NoError(t, err)
	assert.True(t, v.OK)
	assert.True(t, v.Fingerprint.Match)
	require.Len(t, v.Channels, 1)
	assert.True(t, v.Channels[0].Match)
	assert.Equal(t, v.Channels[0].Stored, v.Channels[0].Computed)
}

func TestVerifyRunDefinitionDrift(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sq := testSequence(t)

	require.NoError(t, s.WriteRun(ctx, runReport(t, sq, "tok-1")))

	// The sequence changed since the run was recorded.
	drifted := testSequence(t)
	drifted.Channels[0].Default = 1.5

	v, err := s.VerifyRun(ctx, "tok-1", drifted)
	require.NoError(t, err)
	assert.False(t, v.OK)
	assert.False(t, v.Fingerprint.Match)
	require.Len(t, v.Channels, 1)
	assert.False(t, v.Channels[0].Match)
}

func TestVerifyRunUnknownToken(t *testing.T) {
	s := openTestStore(t)

	_, err := s.VerifyRun(context.Background(), "no-such-token", testSequence(t))
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteRun(context.Background(), runReport(t, testSequence(t), "tok-1")))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetRun(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
}
