package stream

// TriggerEdge selects the active edge of a digital start trigger.
type TriggerEdge string

const (
	// EdgeRising triggers on the rising edge.
	EdgeRising TriggerEdge = "rising"

	// EdgeFalling triggers on the falling edge.
	EdgeFalling TriggerEdge = "falling"
)

// TimingConfig configures the device's sample clock.
type TimingConfig struct {
	// Source names the clock terminal; empty selects the onboard clock.
	Source string

	// Rate is the sample rate in samples per second.
	Rate float64

	// SamplesPerChannel is the finite generation length per channel.
	SamplesPerChannel uint64
}

// TriggerConfig configures a digital edge start trigger.
type TriggerConfig struct {
	Source string
	Edge   TriggerEdge
}

// RefClockConfig phase-locks the device timebase to an external reference
// clock, letting several devices share one run.
type RefClockConfig struct {
	// Source names the reference clock terminal.
	Source string

	// Rate is the reference clock frequency in hertz.
	Rate float64
}

// Signal identifies an internal device signal that can be routed to an
// output terminal.
type Signal string

const (
	// SignalStartTrigger exports the task's start trigger.
	SignalStartTrigger Signal = "start_trigger"

	// SignalSampleClock exports the task's sample clock.
	SignalSampleClock Signal = "sample_clock"
)

// Device is the boundary to a buffered output task.
//
// The method set mirrors a vendor driver's task surface: create channels,
// configure clock and trigger, size the output buffer, forbid regeneration of
// a finite waveform, write the precompiled buffers, then start. Every method
// may fail; the runner stops the whole run on the first device error since a
// partially configured task cannot be trusted to generate anything.
type Device interface {
	// Reset returns the device to a known idle state.
	Reset() error

	// CreateAnalogChannel binds a physical analog output channel to the task.
	CreateAnalogChannel(physical string, minVolts, maxVolts float64) error

	// CreateDigitalChannel binds a physical digital line group to the task.
	CreateDigitalChannel(physical string) error

	// ConfigureTiming sets the sample clock for finite generation.
	ConfigureTiming(cfg TimingConfig) error

	// ConfigureRefClock locks the device timebase to a reference clock.
	ConfigureRefClock(cfg RefClockConfig) error

	// ConfigureBuffer sizes the per-channel output buffer.
	ConfigureBuffer(samplesPerChannel uint64) error

	// DisallowRegeneration forbids the device from replaying the buffer;
	// a finite precompiled waveform must play exactly once.
	DisallowRegeneration() error

	// ConfigureStartTrigger arms a digital edge start trigger.
	ConfigureStartTrigger(cfg TriggerConfig) error

	// ExportSignal routes an internal signal to an output terminal so
	// secondary devices can follow this task.
	ExportSignal(signal Signal, terminal string) error

	// WriteAnalog writes one channel's float samples into the task buffer.
	WriteAnalog(channel string, samples []float64) (int, error)

	// WriteDigital writes one channel's packed port words.
	WriteDigital(channel string, words []uint32) (int, error)

	// WriteDigitalLines writes one channel's per-line levels, one byte per
	// tick.
	WriteDigitalLines(channel string, levels []byte) (int, error)

	// Start begins generation; Stop halts it; Close releases the task.
	Start() error
	Stop() error
	Close() error
}
