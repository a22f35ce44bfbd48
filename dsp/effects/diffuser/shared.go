package diffuser

import (
	"math"
	"sync/atomic"
)

// atomicFloat is a float64 stored in an atomic word.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// SharedParams holds parameters that a control goroutine may change while
// the audio goroutine reads them. Setters clamp into range; Snapshot never
// blocks.
//
// Fields are independent atomics: a snapshot taken during an update may mix
// old and new values of different parameters, never a torn single value.
type SharedParams struct {
	length    atomicFloat
	density   atomicFloat
	threshold atomicFloat
	mix       atomicFloat
	volume    atomicFloat
}

// NewSharedParams returns a store initialised with p (normalized).
func NewSharedParams(p Params) *SharedParams {
	s := &SharedParams{}
	s.Set(p)
	return s
}

// Set replaces all parameters.
func (s *SharedParams) Set(p Params) {
	p = p.Normalize()
	s.length.Store(p.Length)
	s.density.Store(p.Density)
	s.threshold.Store(p.ThresholdDB)
	s.mix.Store(p.Mix)
	s.volume.Store(p.VolumeDB)
}

// SetLength sets the read factor.
func (s *SharedParams) SetLength(v float64) { s.length.Store(LengthRange.Clamp(v)) }

// SetDensity sets the number of active stages.
func (s *SharedParams) SetDensity(v float64) { s.density.Store(DensityRange.Clamp(v)) }

// SetThresholdDB sets the dynamic threshold.
func (s *SharedParams) SetThresholdDB(v float64) { s.threshold.Store(ThresholdRange.Clamp(v)) }

// SetMix sets the static wet share.
func (s *SharedParams) SetMix(v float64) { s.mix.Store(MixRange.Clamp(v)) }

// SetVolumeDB sets the output gain.
func (s *SharedParams) SetVolumeDB(v float64) { s.volume.Store(VolumeRange.Clamp(v)) }

// Snapshot returns the current values.
func (s *SharedParams) Snapshot() Params {
	return Params{
		Length:      s.length.Load(),
		Density:     s.density.Load(),
		ThresholdDB: s.threshold.Load(),
		Mix:         s.mix.Load(),
		VolumeDB:    s.volume.Load(),
	}
}
