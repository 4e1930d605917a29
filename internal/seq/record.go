package seq

import "fmt"

// EndSpec specifies how an interval record ends.
//
// A closed end names an exclusive end tick and whether the last produced
// sample is carried into the following gap. An open end extends the record
// until the next record's start (or the channel's total length).
type EndSpec struct {
	closed bool
	end    uint64
	retain bool
}

// ClosedEnd builds an end specification with an explicit exclusive end tick.
// If retain is true, the gap after the record holds the record's last sample;
// otherwise the gap reverts to the channel default.
func ClosedEnd(end uint64, retain bool) EndSpec {
	return EndSpec{closed: true, end: end, retain: retain}
}

// OpenEnd builds an end specification that extends until the next edge.
func OpenEnd() EndSpec {
	return EndSpec{}
}

// IntervalRecord binds one instruction to a tick range on a channel.
//
// Edge inclusion: the start tick is inclusive, the end tick is exclusive.
// The minimum record length is one tick, so a closed end must satisfy
// end > start. Records are immutable after construction.
type IntervalRecord struct {
	start   uint64
	endSpec EndSpec
	instr   Instruction
}

// NewIntervalRecord constructs an IntervalRecord. Returns INVALID_INTERVAL
// when the end specification is closed and end <= start.
func NewIntervalRecord(start uint64, end EndSpec, instr Instruction) (IntervalRecord, error) {
	if end.closed && end.end <= start {
		return IntervalRecord{}, &ConstructionError{
			Code:      ErrCodeInvalidInterval,
			Message:   "closed end must be strictly greater than start (minimum length is one tick)",
			Instr:     instr.Type().String(),
			StartTick: start,
			EndTick:   end.end,
		}
	}
	return IntervalRecord{start: start, endSpec: end, instr: instr}, nil
}

// Start returns the inclusive start tick.
func (r IntervalRecord) Start() uint64 { return r.start }

// End returns the explicit exclusive end tick, or false for an open record.
func (r IntervalRecord) End() (uint64, bool) {
	return r.endSpec.end, r.endSpec.closed
}

// EffectiveEnd returns the tick at which the record's ownership of the
// timeline ends. An open record owns at least its own start tick, so its
// effective end is start+1: the earliest a subsequent record may begin.
func (r IntervalRecord) EffectiveEnd() uint64 {
	if r.endSpec.closed {
		return r.endSpec.end
	}
	return r.start + 1
}

// Duration returns (end - start, true) for a closed record, or (0, false)
// for an open one.
func (r IntervalRecord) Duration() (uint64, bool) {
	if r.endSpec.closed {
		return r.endSpec.end - r.start, true
	}
	return 0, false
}

// Retain reports whether the gap after this record holds the record's last
// sample. Always false for open records: an open record has no authored end,
// so any gap after it reverts to the channel default.
func (r IntervalRecord) Retain() bool {
	return r.endSpec.closed && r.endSpec.retain
}

// Instruction returns the bound instruction.
func (r IntervalRecord) Instruction() Instruction { return r.instr }

// String renders the record for diagnostics.
func (r IntervalRecord) String() string {
	end := "open end"
	if r.endSpec.closed {
		end = fmt.Sprintf("end=%d, retain=%t", r.endSpec.end, r.endSpec.retain)
	}
	return fmt.Sprintf("IntervalRecord(%s, start=%d, %s)", r.instr, r.start, end)
}
