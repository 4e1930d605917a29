// Package compiler turns authored waveform sequences into dense per-tick
// sample arrays.
//
// The core is a single ordered sweep per channel: records are stable-sorted
// by start tick, gaps between records are filled by the carry policy (retain
// the last produced sample, or revert to the channel default), and any
// overlapping placement aborts the whole channel's compile. The sweep is a
// pure function: identical inputs always produce identical output, and no
// partial array is ever returned.
//
// The package also hosts the static validator (collect-all, stable E-codes)
// and the CUE document decoder that produces seq types from authored files.
package compiler
