// Package diffusion provides a feed-forward delay-line diffusion network.
//
// A [Network] is a cascade of up to [MaxStages] [Stage]s. Each stage holds
// four fractional delay lines whose outputs are cross-fed through a 4x4
// sign butterfly into the next stage, so a single transient is smeared
// into a dense, reverb-like texture. The number of active stages
// ("density") and the read position inside every line ("factor") can be
// changed per sample without reallocating.
//
// Lines 2 and 3 are seeded with offsets of 0.1 times the input, so silence
// in gives exact silence out. [WithLegacySeedBias] restores the constant
// -0.1/+0.1 offsets of the original plugin. Those offsets ring through the
// cascade after every Clear and can pass the dynamic mix at low thresholds.
//
// All processing methods are allocation-free and safe for use in a
// real-time audio callback. A Network is not safe for concurrent use;
// give every channel its own instance.
package diffusion
