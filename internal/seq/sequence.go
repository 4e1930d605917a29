package seq

// ChannelKind distinguishes analog from digital output channels.
//
// The compiler treats both identically (dense float64 samples); the streaming
// layer quantizes digital samples and packs them into line words.
type ChannelKind string

const (
	// KindAnalog marks a floating-point voltage channel.
	KindAnalog ChannelKind = "analog"

	// KindDigital marks a two-level line channel.
	KindDigital ChannelKind = "digital"
)

// ValidChannelKinds defines allowed channel kinds.
var ValidChannelKinds = map[ChannelKind]bool{
	KindAnalog:  true,
	KindDigital: true,
}

// Channel is one output channel of a sequence: an idle default level plus the
// authored, unordered collection of interval records. Records are accumulated
// by the authoring layer and consumed exactly once per compile; they are never
// mutated or reused across compiles.
type Channel struct {
	Name    string
	Kind    ChannelKind
	Default float64
	Records []IntervalRecord
}

// Sequence is an authored multi-channel timeline document.
//
// SampleRate is in samples per second; Length is the total tick count shared
// by every channel. The per-tick physical time array is derived from these by
// the streaming layer's sample clock.
type Sequence struct {
	Name       string
	SampleRate float64
	Length     uint64
	Channels   []Channel
}

// ChannelByName returns the named channel, or nil if absent.
func (s *Sequence) ChannelByName(name string) *Channel {
	for i := range s.Channels {
		if s.Channels[i].Name == name {
			return &s.Channels[i]
		}
	}
	return nil
}
