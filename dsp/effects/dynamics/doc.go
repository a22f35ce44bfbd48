// Package dynamics provides level detectors for loudness-dependent processing.
//
// Included processors:
//   - EnvelopeFollower: Peak-rectified one-pole follower with independent
//     attack and release time constants.
package dynamics
