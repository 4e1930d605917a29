package stream

import (
	"fmt"
	"sync"
)

// SimDevice is an in-memory Device recording every configuration call and
// written buffer. It enforces the same lifecycle a driver task would: no
// writes after start, no start without timing, no regeneration toggles while
// running.
type SimDevice struct {
	mu sync.Mutex

	analog  map[string][]float64
	digital map[string][]uint32
	lines   map[string][]byte

	timing   *TimingConfig
	trigger  *TriggerConfig
	refClock *RefClockConfig
	exports  map[Signal]string
	bufSize  uint64
	noRegen  bool

	running bool
	closed  bool
	resets  int
}

// NewSimDevice creates an idle simulated device.
func NewSimDevice() *SimDevice {
	return &SimDevice{
		analog:  make(map[string][]float64),
		digital: make(map[string][]uint32),
		lines:   make(map[string][]byte),
		exports: make(map[Signal]string),
	}
}

// Reset implements Device.
func (d *SimDevice) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("sim device: reset after close")
	}
	d.analog = make(map[string][]float64)
	d.digital = make(map[string][]uint32)
	d.lines = make(map[string][]byte)
	d.exports = make(map[Signal]string)
	d.timing = nil
	d.trigger = nil
	d.refClock = nil
	d.bufSize = 0
	d.noRegen = false
	d.running = false
	d.resets++
	return nil
}

// CreateAnalogChannel implements Device.
func (d *SimDevice) CreateAnalogChannel(physical string, minVolts, maxVolts float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	if minVolts >= maxVolts {
		return fmt.Errorf("sim device: invalid voltage range [%v, %v] for %s", minVolts, maxVolts, physical)
	}
	if _, ok := d.analog[physical]; ok {
		return fmt.Errorf("sim device: analog channel %s already exists", physical)
	}
	d.analog[physical] = nil
	return nil
}

// CreateDigitalChannel implements Device.
func (d *SimDevice) CreateDigitalChannel(physical string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	if _, ok := d.digital[physical]; ok {
		return fmt.Errorf("sim device: digital channel %s already exists", physical)
	}
	d.digital[physical] = nil
	return nil
}

// ConfigureTiming implements Device.
func (d *SimDevice) ConfigureTiming(cfg TimingConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	if !(cfg.Rate > 0) {
		return fmt.Errorf("sim device: sample rate must be positive, got %v", cfg.Rate)
	}
	if cfg.SamplesPerChannel == 0 {
		return fmt.Errorf("sim device: samples per channel must be positive")
	}
	d.timing = &cfg
	return nil
}

// ConfigureRefClock implements Device.
func (d *SimDevice) ConfigureRefClock(cfg RefClockConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	if cfg.Source == "" {
		return fmt.Errorf("sim device: reference clock source must be non-empty")
	}
	if !(cfg.Rate > 0) {
		return fmt.Errorf("sim device: reference clock rate must be positive, got %v", cfg.Rate)
	}
	d.refClock = &cfg
	return nil
}

// ConfigureBuffer implements Device.
func (d *SimDevice) ConfigureBuffer(samplesPerChannel uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	d.bufSize = samplesPerChannel
	return nil
}

// DisallowRegeneration implements Device.
func (d *SimDevice) DisallowRegeneration() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	d.noRegen = true
	return nil
}

// ConfigureStartTrigger implements Device.
func (d *SimDevice) ConfigureStartTrigger(cfg TriggerConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	if cfg.Source == "" {
		return fmt.Errorf("sim device: trigger source must be non-empty")
	}
	d.trigger = &cfg
	return nil
}

// ExportSignal implements Device.
func (d *SimDevice) ExportSignal(signal Signal, terminal string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return err
	}
	if terminal == "" {
		return fmt.Errorf("sim device: export terminal must be non-empty")
	}
	d.exports[signal] = terminal
	return nil
}

// WriteAnalog implements Device.
func (d *SimDevice) WriteAnalog(channel string, samples []float64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return 0, err
	}
	if _, ok := d.analog[channel]; !ok {
		return 0, fmt.Errorf("sim device: unknown analog channel %s", channel)
	}
	d.analog[channel] = append(d.analog[channel], samples...)
	return len(samples), nil
}

// WriteDigital implements Device.
func (d *SimDevice) WriteDigital(channel string, words []uint32) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return 0, err
	}
	if _, ok := d.digital[channel]; !ok {
		return 0, fmt.Errorf("sim device: unknown digital channel %s", channel)
	}
	d.digital[channel] = append(d.digital[channel], words...)
	return len(words), nil
}

// WriteDigitalLines implements Device.
func (d *SimDevice) WriteDigitalLines(channel string, levels []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.configurable(); err != nil {
		return 0, err
	}
	if _, ok := d.digital[channel]; !ok {
		return 0, fmt.Errorf("sim device: unknown digital channel %s", channel)
	}
	d.lines[channel] = append(d.lines[channel], levels...)
	return len(levels), nil
}

// Start implements Device.
func (d *SimDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("sim device: start after close")
	}
	if d.running {
		return fmt.Errorf("sim device: already running")
	}
	if d.timing == nil {
		return fmt.Errorf("sim device: start without timing configuration")
	}
	d.running = true
	return nil
}

// Stop implements Device.
func (d *SimDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("sim device: stop after close")
	}
	d.running = false
	return nil
}

// Close implements Device.
func (d *SimDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	d.closed = true
	return nil
}

func (d *SimDevice) configurable() error {
	if d.closed {
		return fmt.Errorf("sim device: task is closed")
	}
	if d.running {
		return fmt.Errorf("sim device: task is running")
	}
	return nil
}

// AnalogBuffer returns a copy of what was written to an analog channel.
func (d *SimDevice) AnalogBuffer(channel string) []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]float64, len(d.analog[channel]))
	copy(out, d.analog[channel])
	return out
}

// DigitalBuffer returns a copy of what was written to a digital channel.
func (d *SimDevice) DigitalBuffer(channel string) []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]uint32, len(d.digital[channel]))
	copy(out, d.digital[channel])
	return out
}

// LineBuffer returns a copy of the per-line levels written to a digital
// channel.
func (d *SimDevice) LineBuffer(channel string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.lines[channel]))
	copy(out, d.lines[channel])
	return out
}

// Timing returns the configured timing, or nil.
func (d *SimDevice) Timing() *TimingConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timing
}

// Trigger returns the configured start trigger, or nil.
func (d *SimDevice) Trigger() *TriggerConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trigger
}

// RefClock returns the configured reference clock, or nil.
func (d *SimDevice) RefClock() *RefClockConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refClock
}

// ExportedTerminal returns the terminal a signal was routed to, or the
// empty string.
func (d *SimDevice) ExportedTerminal(signal Signal) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exports[signal]
}

// RegenerationDisallowed reports whether regeneration was forbidden.
func (d *SimDevice) RegenerationDisallowed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.noRegen
}

// BufferSize returns the configured per-channel buffer size.
func (d *SimDevice) BufferSize() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bufSize
}

// Running reports whether generation is in progress.
func (d *SimDevice) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}
