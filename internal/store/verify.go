package store

import (
	"context"
	"fmt"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/seq"
	"github.com/waveline/waveline/internal/stream"
)

// ChannelVerdict reports one channel's fingerprint comparison.
type ChannelVerdict struct {
	Channel  string `json:"channel"`
	Stored   string `json:"stored"`
	Computed string `json:"computed"`
	Match    bool   `json:"match"`
}

// Verification is the outcome of replaying a stored run against a sequence.
type Verification struct {
	Token       string           `json:"token"`
	Sequence    string           `json:"sequence"`
	Fingerprint ChannelVerdict   `json:"definition"`
	Channels    []ChannelVerdict `json:"channels"`
	OK          bool             `json:"ok"`
}

// VerifyRun recompiles the given sequence and compares the resulting
// definition and per-channel sample fingerprints against what the run
// recorded. A mismatch means either the sequence definition changed since
// the run, or the compile is no longer reproducing the same samples.
func (s *Store) VerifyRun(ctx context.Context, token string, sq *seq.Sequence) (*Verification, error) {
	stored, err := s.GetRun(ctx, token)
	if err != nil {
		return nil, err
	}

	clock, err := stream.NewClock(sq.SampleRate)
	if err != nil {
		return nil, err
	}
	res, err := compiler.CompileSequence(sq, clock.Times(sq.Length))
	if err != nil {
		return nil, fmt.Errorf("recompile %s: %w", sq.Name, err)
	}

	v := &Verification{
		Token:    stored.Token,
		Sequence: stored.Sequence,
		Fingerprint: ChannelVerdict{
			Stored:   stored.Fingerprint,
			Computed: res.Fingerprint,
			Match:    stored.Fingerprint == res.Fingerprint,
		},
		OK: true,
	}
	if !v.Fingerprint.Match {
		v.OK = false
	}

	computed := make(map[string]string, len(res.Channels))
	for _, ch := range res.Channels {
		computed[ch.Name] = ch.Fingerprint
	}
	for _, ch := range stored.Channels {
		cv := ChannelVerdict{Channel: ch.Name, Stored: ch.Fingerprint}
		if fp, ok := computed[ch.Name]; ok {
			cv.Computed = fp
		}
		cv.Match = cv.Computed != "" && cv.Computed == cv.Stored
		if !cv.Match {
			v.OK = false
		}
		v.Channels = append(v.Channels, cv)
	}
	return v, nil
}
