// Package store provides SQLite-backed provenance for streaming runs.
//
// The store keeps run metadata and per-channel sample fingerprints, never the
// sample arrays themselves: the compiler is pure, so a stored fingerprint plus
// the sequence document is enough to reproduce and verify any run.
//
// Ordering uses a per-store monotonic seq (logical clock), never wall-clock
// timestamps, so listings are deterministic across replays.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
