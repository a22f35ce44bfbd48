package diffuser

import (
	"math"

	"github.com/cwbudde/algo-diffuser/dsp/core"
	"github.com/cwbudde/algo-diffuser/dsp/effects/diffusion"
)

// ParamRange describes the host-facing range of one parameter.
type ParamRange struct {
	Name    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Clamp limits v to the range; NaN maps to the default.
func (r ParamRange) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	return core.Clamp(v, r.Min, r.Max)
}

// Parameter ranges, in host units.
var (
	LengthRange    = ParamRange{Name: "Length", Min: 0, Max: 1, Step: 0.01, Default: 0.5}
	DensityRange   = ParamRange{Name: "Density", Min: diffusion.MinDensity, Max: diffusion.MaxStages, Step: 0.01, Default: 4}
	ThresholdRange = ParamRange{Name: "Threshold", Min: -60, Max: 0, Step: 0.01, Default: -30}
	MixRange       = ParamRange{Name: "Mix", Min: 0, Max: 1, Step: 0.01, Default: 0.5}
	VolumeRange    = ParamRange{Name: "Volume", Min: -12, Max: 12, Step: 0.1, Default: 0}
)

// ParamRanges lists every parameter range in host order.
func ParamRanges() []ParamRange {
	return []ParamRange{LengthRange, DensityRange, ThresholdRange, MixRange, VolumeRange}
}

// Params is a per-block parameter snapshot in host units.
type Params struct {
	Length      float64 // read position inside every delay line, [0, 1]
	Density     float64 // active diffusion stages, [2, 8], truncated per block
	ThresholdDB float64 // envelope level where dynamic diffusion starts, [-60, 0]
	Mix         float64 // static wet share, [0, 1]
	VolumeDB    float64 // output gain, [-12, 12]
}

// DefaultParams returns the default parameter set.
func DefaultParams() Params {
	return Params{
		Length:      LengthRange.Default,
		Density:     DensityRange.Default,
		ThresholdDB: ThresholdRange.Default,
		Mix:         MixRange.Default,
		VolumeDB:    VolumeRange.Default,
	}
}

// Normalize clamps every field into its range.
func (p Params) Normalize() Params {
	return Params{
		Length:      LengthRange.Clamp(p.Length),
		Density:     DensityRange.Clamp(p.Density),
		ThresholdDB: ThresholdRange.Clamp(p.ThresholdDB),
		Mix:         MixRange.Clamp(p.Mix),
		VolumeDB:    VolumeRange.Clamp(p.VolumeDB),
	}
}

// Block normalizes p and derives the values the per-sample path consumes.
func (p Params) Block() BlockParams {
	n := p.Normalize()

	return BlockParams{
		Factor:        n.Length,
		Density:       int(n.Density),
		ThresholdDB:   float32(n.ThresholdDB),
		ThresholdGain: float32(core.DBToLinear(n.ThresholdDB)),
		Mix:           float32(n.Mix),
		Volume:        float32(core.DBToLinear(n.VolumeDB)),
	}
}

// BlockParams holds the derived, block-constant values used per sample.
type BlockParams struct {
	Factor        float64
	Density       int
	ThresholdDB   float32
	ThresholdGain float32
	Mix           float32
	Volume        float32
}
