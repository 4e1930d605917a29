// Package stream hands compiled sample arrays to an output device.
//
// This is the hardware-facing collaborator around the pure compiler core: it
// owns the sample clock, the device task lifecycle (timing, buffer,
// regeneration, trigger) and the buffered writes. The compiler itself knows
// nothing about devices; it communicates only through plain sample arrays.
//
// Device is the boundary interface; SimDevice is the in-repo implementation
// used by the CLI run command and by tests. A vendor driver binding satisfies
// the same interface out of tree.
package stream
