// Package ir analyzes impulse responses of diffusion and reverberation
// processors.
//
// Decay metrics come from the Schroeder backward integration of the squared
// response:
//
//   - EDT: early decay time (0 to -10 dB, extrapolated to -60 dB)
//   - T20, T30: decay from -5 to -25 dB and -5 to -35 dB
//   - RT60: T30 when measurable, otherwise T20
//   - Center time: temporal energy centroid
//
// Texture metrics describe how well a response is diffused:
//
//   - Echo density: share of samples outside one standard deviation of
//     the local window, normalized so Gaussian noise scores 1
//   - Spectral flatness: geometric over arithmetic mean of the power
//     spectrum, 1 for a perfectly white response
//
// # Usage
//
//	analyzer := ir.NewAnalyzer(48000)
//	metrics, err := analyzer.AnalyzeFloat32(response)
//	fmt.Printf("RT60 = %.2f s, density = %.2f\n", metrics.RT60, metrics.EchoDensity)
package ir
