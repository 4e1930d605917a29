package stream

import "fmt"

// Clock derives per-tick physical time from the sample rate.
//
// The compiler core is deliberately decoupled from tick indices: it evaluates
// instructions over an externally supplied time array. Clock is the one place
// that array is produced, so every channel of a sequence shares identical
// time values and compiles stay bit-reproducible.
type Clock struct {
	rate float64
}

// NewClock creates a sample clock. The rate must be positive.
func NewClock(rate float64) (*Clock, error) {
	if !(rate > 0) {
		return nil, fmt.Errorf("sample clock rate must be positive, got %v", rate)
	}
	return &Clock{rate: rate}, nil
}

// Rate returns the sample rate in samples per second.
func (c *Clock) Rate() float64 { return c.rate }

// Period returns the time between ticks in seconds.
func (c *Clock) Period() float64 { return 1 / c.rate }

// Times materializes the physical time of each of n ticks: t[i] = i / rate.
func (c *Clock) Times(n uint64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / c.rate
	}
	return out
}
