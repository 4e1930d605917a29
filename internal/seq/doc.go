// Package seq provides the data model for waveform sequences.
//
// This package contains type definitions and pure evaluation only. All other
// internal packages import seq; seq imports nothing internal. This keeps the
// data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Instructions and interval records are immutable after construction
//   - All validation happens exactly once, at construction (fail-fast)
//   - Evaluation is a pure function of (instruction, time values)
//   - Canonical JSON + SHA-256 fingerprints are the only identity mechanism
package seq
