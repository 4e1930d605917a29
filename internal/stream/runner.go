package stream

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/seq"
)

// digitalThreshold separates low from high when quantizing a digital
// channel's float samples.
const digitalThreshold = 0.5

// RunOptions configures a streaming run.
type RunOptions struct {
	// Trigger arms a digital edge start trigger when Source is non-empty.
	Trigger TriggerConfig

	// ClockSource names the sample clock terminal; empty selects the
	// onboard clock.
	ClockSource string

	// RefClock locks the device timebase to an external reference clock
	// when Source is non-empty.
	RefClock RefClockConfig

	// ExportTerminal routes an internal signal to an output terminal when
	// non-empty; ExportSignal defaults to the start trigger.
	ExportSignal   Signal
	ExportTerminal string

	// DigitalLines writes digital channels as per-line bytes instead of
	// packed port words.
	DigitalLines bool

	// VoltageMin/Max bound analog channels. Zero values default to ±10V.
	VoltageMin float64
	VoltageMax float64

	// Token overrides the generated run token (used by deterministic tests).
	Token string
}

// ChannelReport summarizes one channel of a completed run.
type ChannelReport struct {
	Name        string          `json:"name"`
	Kind        seq.ChannelKind `json:"kind"`
	Samples     uint64          `json:"samples"`
	Fingerprint string          `json:"fingerprint"`
	First       float64         `json:"first"`
	Last        float64         `json:"last"`
}

// RunReport is the outcome of streaming one sequence.
type RunReport struct {
	Token       string          `json:"token"`
	Sequence    string          `json:"sequence"`
	Fingerprint string          `json:"fingerprint"`
	SampleRate  float64         `json:"sample_rate"`
	Length      uint64          `json:"length"`
	Channels    []ChannelReport `json:"channels"`
}

// Runner compiles sequences and streams them to a device.
type Runner struct {
	device Device
	log    zerolog.Logger
}

// NewRunner creates a runner bound to one device.
func NewRunner(device Device, log zerolog.Logger) *Runner {
	return &Runner{device: device, log: log}
}

// CompileAll compiles every channel of a sequence concurrently.
//
// Channel compiles are fully independent (each owns its output array), so
// they fan out one goroutine per channel with no locking inside the compiler.
// The assembled result preserves document order regardless of completion
// order; the first error aborts the whole run with no output.
func CompileAll(s *seq.Sequence, times []float64) (*compiler.Result, error) {
	fp, err := s.Fingerprint()
	if err != nil {
		return nil, err
	}

	compiled := make([]compiler.CompiledChannel, len(s.Channels))
	errs := make([]error, len(s.Channels))

	var wg sync.WaitGroup
	for i, ch := range s.Channels {
		wg.Add(1)
		go func(i int, ch seq.Channel) {
			defer wg.Done()
			compiled[i], errs[i] = compiler.CompileChannel(ch, s.Length, times)
		}(i, ch)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &compiler.Result{
		Sequence:    s.Name,
		Fingerprint: fp,
		SampleRate:  s.SampleRate,
		Length:      s.Length,
		Channels:    compiled,
	}, nil
}

// Run compiles the sequence and plays it on the device: reset, create
// channels, configure finite-sample timing and the output buffer, forbid
// regeneration, arm the optional start trigger, write every channel's buffer,
// then start.
func (r *Runner) Run(s *seq.Sequence, opts RunOptions) (*RunReport, error) {
	if verrs := compiler.Validate(s); len(verrs) > 0 {
		return nil, fmt.Errorf("sequence %q failed validation: %w", s.Name, verrs[0])
	}

	clock, err := NewClock(s.SampleRate)
	if err != nil {
		return nil, err
	}

	token := opts.Token
	if token == "" {
		token = uuid.NewString()
	}
	log := r.log.With().Str("run", token).Str("sequence", s.Name).Logger()

	log.Info().
		Float64("rate", s.SampleRate).
		Uint64("length", s.Length).
		Int("channels", len(s.Channels)).
		Msg("compiling sequence")

	result, err := CompileAll(s, clock.Times(s.Length))
	if err != nil {
		log.Error().Err(err).Msg("compile failed")
		return nil, err
	}

	if err := r.configure(s, opts); err != nil {
		return nil, err
	}

	report := &RunReport{
		Token:       token,
		Sequence:    s.Name,
		Fingerprint: result.Fingerprint,
		SampleRate:  s.SampleRate,
		Length:      s.Length,
	}

	for _, ch := range result.Channels {
		if err := r.writeChannel(ch, opts.DigitalLines); err != nil {
			log.Error().Err(err).Str("channel", ch.Name).Msg("buffer write failed")
			return nil, err
		}
		report.Channels = append(report.Channels, ChannelReport{
			Name:        ch.Name,
			Kind:        ch.Kind,
			Samples:     uint64(len(ch.Samples)),
			Fingerprint: ch.Fingerprint,
			First:       ch.Samples[0],
			Last:        ch.Samples[len(ch.Samples)-1],
		})
	}

	if err := r.device.Start(); err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}
	log.Info().Str("fingerprint", result.Fingerprint).Msg("generation started")

	return report, nil
}

func (r *Runner) configure(s *seq.Sequence, opts RunOptions) error {
	if err := r.device.Reset(); err != nil {
		return fmt.Errorf("reset device: %w", err)
	}

	vmin, vmax := opts.VoltageMin, opts.VoltageMax
	if vmin == 0 && vmax == 0 {
		vmin, vmax = -10, 10
	}

	for _, ch := range s.Channels {
		switch ch.Kind {
		case seq.KindDigital:
			if err := r.device.CreateDigitalChannel(ch.Name); err != nil {
				return fmt.Errorf("create digital channel %s: %w", ch.Name, err)
			}
		default:
			if err := r.device.CreateAnalogChannel(ch.Name, vmin, vmax); err != nil {
				return fmt.Errorf("create analog channel %s: %w", ch.Name, err)
			}
		}
	}

	if opts.RefClock.Source != "" {
		if err := r.device.ConfigureRefClock(opts.RefClock); err != nil {
			return fmt.Errorf("configure reference clock: %w", err)
		}
	}
	if err := r.device.ConfigureTiming(TimingConfig{
		Source:            opts.ClockSource,
		Rate:              s.SampleRate,
		SamplesPerChannel: s.Length,
	}); err != nil {
		return fmt.Errorf("configure timing: %w", err)
	}
	if err := r.device.ConfigureBuffer(s.Length); err != nil {
		return fmt.Errorf("configure buffer: %w", err)
	}
	if err := r.device.DisallowRegeneration(); err != nil {
		return fmt.Errorf("disallow regeneration: %w", err)
	}
	if opts.Trigger.Source != "" {
		edge := opts.Trigger.Edge
		if edge == "" {
			edge = EdgeRising
		}
		if err := r.device.ConfigureStartTrigger(TriggerConfig{
			Source: opts.Trigger.Source,
			Edge:   edge,
		}); err != nil {
			return fmt.Errorf("configure start trigger: %w", err)
		}
	}
	if opts.ExportTerminal != "" {
		signal := opts.ExportSignal
		if signal == "" {
			signal = SignalStartTrigger
		}
		if err := r.device.ExportSignal(signal, opts.ExportTerminal); err != nil {
			return fmt.Errorf("export signal %s: %w", signal, err)
		}
	}
	return nil
}

func (r *Runner) writeChannel(ch compiler.CompiledChannel, lineWrites bool) error {
	switch ch.Kind {
	case seq.KindDigital:
		if lineWrites {
			levels := PackLines(ch.Samples)
			n, err := r.device.WriteDigitalLines(ch.Name, levels)
			if err != nil {
				return err
			}
			if n != len(levels) {
				return fmt.Errorf("short line write on %s: %d of %d", ch.Name, n, len(levels))
			}
			return nil
		}
		words := PackDigital(ch.Samples)
		n, err := r.device.WriteDigital(ch.Name, words)
		if err != nil {
			return err
		}
		if n != len(words) {
			return fmt.Errorf("short digital write on %s: %d of %d", ch.Name, n, len(words))
		}
	default:
		n, err := r.device.WriteAnalog(ch.Name, ch.Samples)
		if err != nil {
			return err
		}
		if n != len(ch.Samples) {
			return fmt.Errorf("short analog write on %s: %d of %d", ch.Name, n, len(ch.Samples))
		}
	}
	return nil
}

// PackDigital quantizes float samples to line levels: values above the
// threshold drive the line high. One word per tick keeps the layout
// group-by-channel, matching the task's write call.
func PackDigital(samples []float64) []uint32 {
	words := make([]uint32, len(samples))
	for i, v := range samples {
		if v > digitalThreshold {
			words[i] = 1
		}
	}
	return words
}

// PackLines quantizes float samples for a per-line write, one byte per tick.
func PackLines(samples []float64) []byte {
	levels := make([]byte, len(samples))
	for i, v := range samples {
		if v > digitalThreshold {
			levels[i] = 1
		}
	}
	return levels
}
