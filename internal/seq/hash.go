package seq

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSequence = "waveline/sequence/v1"
	DomainSamples  = "waveline/samples/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a sequence
// definition. Two sequences with identical channels, placements and
// instructions hash identically regardless of authoring order within a
// channel's argument lists (argument order is cosmetic and excluded by the
// canonical object encoding).
func (s *Sequence) Fingerprint() (string, error) {
	canonical, err := MarshalCanonical(s.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("sequence fingerprint: %w", err)
	}
	return hashWithDomain(DomainSequence, canonical), nil
}

// SampleFingerprint computes the identity of one channel's compiled output.
// Purity of the compiler makes this reproducible: recompiling the same
// sequence yields the same fingerprint.
func SampleFingerprint(channel string, samples []float64) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"channel": channel,
		"samples": samples,
	})
	if err != nil {
		return "", fmt.Errorf("sample fingerprint: %w", err)
	}
	return hashWithDomain(DomainSamples, canonical), nil
}

func (s *Sequence) canonicalMap() map[string]any {
	channels := make([]any, len(s.Channels))
	for i, ch := range s.Channels {
		channels[i] = ch.canonicalMap()
	}
	return map[string]any{
		"name":        s.Name,
		"sample_rate": s.SampleRate,
		"length":      s.Length,
		"channels":    channels,
	}
}

func (c Channel) canonicalMap() map[string]any {
	records := make([]any, len(c.Records))
	for i, r := range c.Records {
		records[i] = r.canonicalMap()
	}
	return map[string]any{
		"name":    c.Name,
		"kind":    string(c.Kind),
		"default": c.Default,
		"records": records,
	}
}

func (r IntervalRecord) canonicalMap() map[string]any {
	m := map[string]any{
		"start": r.start,
		"instr": r.instr.canonicalMap(),
	}
	if end, closed := r.End(); closed {
		m["end"] = end
		m["retain"] = r.Retain()
	}
	return m
}

func (in Instruction) canonicalMap() map[string]any {
	args := make(map[string]any, len(in.args))
	for _, arg := range in.args {
		args[arg.Name] = arg.Value
	}
	return map[string]any{
		"type": in.typ.String(),
		"args": args,
	}
}
