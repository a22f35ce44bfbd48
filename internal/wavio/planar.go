package wavio

// Deinterleave splits interleaved samples into one slice per channel.
func Deinterleave(samples []float32, channels int) [][]float32 {
	if channels <= 0 {
		return nil
	}

	frames := len(samples) / channels
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := range out {
			out[ch][i] = samples[i*channels+ch]
		}
	}

	return out
}

// Interleave joins per-channel slices of equal length into frames. Shorter
// channels are zero padded to the longest.
func Interleave(channels [][]float32) []float32 {
	frames := 0
	for _, ch := range channels {
		frames = max(frames, len(ch))
	}

	out := make([]float32, frames*len(channels))
	for c, ch := range channels {
		for i, v := range ch {
			out[i*len(channels)+c] = v
		}
	}

	return out
}

// Planar returns a's samples split per channel.
func (a *Audio) Planar() [][]float32 {
	return Deinterleave(a.Samples, a.Channels)
}

// FromPlanar builds an Audio from per-channel slices.
func FromPlanar(sampleRate int, channels [][]float32) *Audio {
	return &Audio{
		SampleRate: sampleRate,
		Channels:   len(channels),
		Samples:    Interleave(channels),
	}
}
