// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the per-sample building blocks of the grain renderer:
// the grain envelope, equal-power panning, the one-pole post filter, a
// per-channel ring buffer and a linear resampler that reads from it.
//
// Everything here works on caller-owned buffers and allocates nothing after
// construction.
package dsp
